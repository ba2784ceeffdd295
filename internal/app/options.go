package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"

	"go.uber.org/zap"
)

// Mode 进程运行模式
type Mode string

const (
	ModeAll    Mode = "all"
	ModeAPI    Mode = "api"
	ModeWorker Mode = "worker"
)

// ParseMode 解析 -mode 参数，空值视为 all
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown run mode: %s", raw)
	}
}

func (m Mode) servesHTTP() bool {
	return m == ModeAll || m == ModeAPI
}

// runsWorker worker 模式总是启动消费者；all 模式仅在队列启用时启动
func (m Mode) runsWorker(queueEnabled bool) bool {
	return m == ModeWorker || (m == ModeAll && queueEnabled)
}

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            Mode
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 && o.Config != nil {
		o.ShutdownTimeout = o.Config.Server.ShutdownTimeout()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
