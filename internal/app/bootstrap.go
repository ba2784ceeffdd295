package app

import (
	"errors"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/router"
	"github.com/paygate-next/internal/worker"
)

// BuildRunner 按运行模式装配 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode Mode) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	var services []Service
	if mode.servesHTTP() {
		services = append(services, NewHTTPService(cfg.Server.Addr(), router.SetupRouter(cfg, container)))
	}
	if mode.runsWorker(cfg.Queue.Enabled) {
		svc, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	opts = opts.withDefaults()
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Addr(),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
	)
	return RunWithOptions(runner, opts)
}
