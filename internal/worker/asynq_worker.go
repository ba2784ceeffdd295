package worker

import (
	"context"
	"errors"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/queue"
	"github.com/paygate-next/internal/service"

	"github.com/hibiken/asynq"
)

// WebhookDeliverer 交易事件推送
type WebhookDeliverer interface {
	Deliver(ctx context.Context, tenantID uint, transactionID, event string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	webhooks WebhookDeliverer
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{Container: c}
	if c != nil && c.WebhookService != nil {
		consumer.webhooks = c.WebhookService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTransactionWebhook, c.handleTransactionWebhook)
}

func (c *Consumer) handleTransactionWebhook(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_transaction_webhook_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseTransactionWebhookPayload(task.Payload())
	if err != nil {
		// 载荷损坏重试也无法恢复
		logger.Warnw("worker_transaction_webhook_invalid_payload", "error", err)
		return asynq.SkipRetry
	}
	if c.webhooks == nil {
		logger.Warnw("worker_transaction_webhook_skip_service_nil", "tenant_id", payload.TenantID)
		return nil
	}
	log := logger.Tenant(payload.TenantID, "transaction_id", payload.TransactionID, "event", payload.Event)
	if err := c.webhooks.Deliver(ctx, payload.TenantID, payload.TransactionID, payload.Event); err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			log.Debugw("worker_transaction_webhook_skip_not_found")
			metrics.ObserveWebhookTask("skipped")
			return nil
		}
		log.Warnw("worker_transaction_webhook_failed", "error", err)
		return err
	}
	metrics.ObserveWebhookTask("delivered")
	return nil
}
