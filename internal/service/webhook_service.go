package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/tenancy"

	"github.com/google/uuid"
)

const (
	webhookSignatureHeader = "X-Paygate-Signature"
	webhookEventHeader     = "X-Paygate-Event"
	webhookDeliveryHeader  = "X-Paygate-Delivery"
	defaultWebhookTimeout  = 5 * time.Second
)

// WebhookEvent 交易事件推送内容
type WebhookEvent struct {
	ID         string              `json:"id"`
	Event      string              `json:"event"`
	TenantID   uint                `json:"tenant_id"`
	OccurredAt time.Time           `json:"occurred_at"`
	Data       *models.Transaction `json:"data"`
}

// WebhookService 交易事件推送服务
type WebhookService struct {
	txnRepo    repository.TransactionRepository
	accountSvc *PaymentAccountService
	client     *http.Client
}

// NewWebhookService 创建推送服务
func NewWebhookService(txnRepo repository.TransactionRepository, accountSvc *PaymentAccountService, timeout time.Duration) *WebhookService {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookService{
		txnRepo:    txnRepo,
		accountSvc: accountSvc,
		client:     &http.Client{Timeout: timeout},
	}
}

// Deliver 以事件中的租户作用域读取交易并推送到账户 webhook_url，非 2xx 返回错误
func (s *WebhookService) Deliver(ctx context.Context, tenantID uint, transactionID, event string) error {
	scope := tenancy.Resolved(tenantID)
	txn, err := s.txnRepo.GetByTransactionID(scope, transactionID)
	if err != nil {
		return err
	}
	if txn == nil {
		return ErrTransactionNotFound
	}
	account := txn.PaymentAccount
	if account == nil || strings.TrimSpace(account.WebhookURL) == "" {
		logger.Tenant(tenantID).Debugw("transaction_webhook_skipped", "transaction_id", transactionID)
		return nil
	}
	secret, err := s.accountSvc.RevealSecret(account)
	if err != nil {
		return fmt.Errorf("reveal webhook secret: %w", err)
	}

	payload := WebhookEvent{
		ID:         uuid.NewString(),
		Event:      event,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Data:       txn,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, account.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhookEventHeader, event)
	req.Header.Set(webhookDeliveryHeader, payload.ID)
	if secret != "" {
		req.Header.Set(webhookSignatureHeader, "sha256="+SignWebhookPayload(secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint responded %d", resp.StatusCode)
	}
	logger.Tenant(tenantID).Infow("transaction_webhook_delivered",
		"transaction_id", transactionID,
		"event", event,
		"status", resp.StatusCode,
	)
	return nil
}

// SignWebhookPayload HMAC-SHA256 签名（十六进制）
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
