package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/constants"
)

func TestTransactionWebhookTask(t *testing.T) {
	task, err := NewTransactionWebhookTask(TransactionWebhookPayload{
		TenantID:      4,
		TransactionID: "txn-1",
		Event:         constants.WebhookEventRefundCompleted,
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskTransactionWebhook {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseTransactionWebhookPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.TenantID != 4 || payload.TransactionID != "txn-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestTransactionWebhookPayloadRequiresTenant(t *testing.T) {
	if _, err := NewTransactionWebhookTask(TransactionWebhookPayload{TransactionID: "txn-1", Event: "payment.completed"}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("missing tenant want ErrInvalidPayload got %v", err)
	}
	if _, err := ParseTransactionWebhookPayload([]byte(`{"tenant_id":1,"event":"payment.completed"}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("missing transaction want ErrInvalidPayload got %v", err)
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.NotifyTransaction(context.Background(), 1, "txn-1", constants.WebhookEventPaymentCompleted); err != nil {
		t.Fatalf("disabled client should silently skip: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] == 0 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestWebhookDedupeIDIncludesTenantAndEvent(t *testing.T) {
	a := TransactionWebhookPayload{TenantID: 3, TransactionID: "txn-1", Event: constants.WebhookEventPaymentCompleted}
	b := a
	b.Event = constants.WebhookEventRefundCompleted
	if a.dedupeID() == b.dedupeID() {
		t.Fatalf("different events must not share a task id")
	}
	if a.dedupeID() != "txn-webhook:3:txn-1:"+constants.WebhookEventPaymentCompleted {
		t.Fatalf("unexpected dedupe id: %s", a.dedupeID())
	}
}

func TestNewClientFallsBackToDefaultQueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: true, Queues: map[string]int{DefaultQueue: 1}})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if !client.Enabled() || client.webhookQueue != DefaultQueue {
		t.Fatalf("webhook queue want %s got %s", DefaultQueue, client.webhookQueue)
	}
}
