package queue

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/paygate-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTransactionWebhook 交易事件 webhook 推送任务
	TaskTransactionWebhook = constants.TaskTransactionWebhook
)

// ErrInvalidPayload 任务载荷不完整
var ErrInvalidPayload = errors.New("invalid task payload")

// TransactionWebhookPayload 交易事件推送任务载荷
// 租户 ID 随任务携带，消费端据此重建作用域。
type TransactionWebhookPayload struct {
	TenantID      uint   `json:"tenant_id"`
	TransactionID string `json:"transaction_id"`
	Event         string `json:"event"`
}

// Validate 校验载荷
func (p TransactionWebhookPayload) Validate() error {
	if p.TenantID == 0 || strings.TrimSpace(p.TransactionID) == "" || strings.TrimSpace(p.Event) == "" {
		return ErrInvalidPayload
	}
	return nil
}

// dedupeID 同一交易同一事件的任务 ID
func (p TransactionWebhookPayload) dedupeID() string {
	return "txn-webhook:" + strconv.FormatUint(uint64(p.TenantID), 10) + ":" + p.TransactionID + ":" + p.Event
}

// NewTransactionWebhookTask 创建交易事件推送任务
func NewTransactionWebhookTask(payload TransactionWebhookPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTransactionWebhook, body), nil
}

// ParseTransactionWebhookPayload 解析交易事件推送任务
func ParseTransactionWebhookPayload(body []byte) (TransactionWebhookPayload, error) {
	var payload TransactionWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, payload.Validate()
}
