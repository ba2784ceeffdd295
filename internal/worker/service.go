package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/queue"

	"github.com/hibiken/asynq"
)

// ErrQueueDisabled 队列未启用时无法创建 Worker
var ErrQueueDisabled = errors.New("queue disabled")

// Service 消费交易事件队列的长驻服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建 Worker；asynq 内部日志走 zap，任务最终失败计入指标
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.SW("component", "asynq")
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(reportTaskError)

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(redisOpt, serverCfg), mux: mux}, nil
}

func reportTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	exhausted := retried >= maxRetry || errors.Is(err, asynq.SkipRetry)
	if exhausted {
		metrics.ObserveWebhookTask("exhausted")
	} else {
		metrics.ObserveWebhookTask("retry")
	}
	logger.Warnw("worker_task_failed",
		"task", task.Type(),
		"retried", retried,
		"max_retry", maxRetry,
		"exhausted", exhausted,
		"error", err,
	)
}

func (s *Service) Name() string { return "worker" }

// Start 启动消费并阻塞到 ctx 结束，信号由 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Stop 等待处理中的任务结束；ctx 先到期时返回超时错误，剩余任务交给 asynq 重新入队
func (s *Service) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.Shutdown()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}
