package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
)

type capturedWebhook struct {
	signature string
	event     string
	delivery  string
	body      []byte
}

func TestWebhookDeliverSignsPayload(t *testing.T) {
	f := newLedgerFixture(t)

	var mu sync.Mutex
	var got []capturedWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, capturedWebhook{
			signature: r.Header.Get("X-Paygate-Signature"),
			event:     r.Header.Get("X-Paygate-Event"),
			delivery:  r.Header.Get("X-Paygate-Delivery"),
			body:      body,
		})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	account := f.mustAccount(t, f.acme, "hooked", srv.URL+"/ledger")
	txn, err := f.ledger.CreatePayment(context.Background(), f.acme, CreatePaymentInput{
		PaymentAccountID: account.ID,
		Amount:           models.MustMoney("12.34"),
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	webhooks := NewWebhookService(repository.NewTransactionRepository(f.db), f.accounts, time.Second)
	if err := webhooks.Deliver(context.Background(), f.acme.TenantID(), txn.TransactionID, constants.WebhookEventPaymentCompleted); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("want 1 delivery got %d", len(got))
	}
	delivery := got[0]
	if delivery.event != constants.WebhookEventPaymentCompleted || delivery.delivery == "" {
		t.Fatalf("unexpected headers: %+v", delivery)
	}
	if want := "sha256=" + SignWebhookPayload("whsec_hooked", delivery.body); delivery.signature != want {
		t.Fatalf("signature mismatch: want %s got %s", want, delivery.signature)
	}
	var payload struct {
		Event    string `json:"event"`
		TenantID uint   `json:"tenant_id"`
		Data     struct {
			TransactionID string `json:"transaction_id"`
			Status        string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(delivery.body, &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.TenantID != f.acme.TenantID() || payload.Data.TransactionID != txn.TransactionID || payload.Data.Status != constants.TransactionStatusCompleted {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestWebhookDeliverFailsOnNon2xx(t *testing.T) {
	f := newLedgerFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	account := f.mustAccount(t, f.acme, "flaky", srv.URL)
	txn, err := f.ledger.CreatePayment(context.Background(), f.acme, CreatePaymentInput{
		PaymentAccountID: account.ID,
		Amount:           models.MustMoney("1.00"),
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	webhooks := NewWebhookService(f.txnRepo, f.accounts, time.Second)
	if err := webhooks.Deliver(context.Background(), f.acme.TenantID(), txn.TransactionID, constants.WebhookEventPaymentCompleted); err == nil {
		t.Fatalf("non-2xx response should be returned as error for retry")
	}
}

func TestWebhookDeliverScopesByTenant(t *testing.T) {
	f := newLedgerFixture(t)
	txn := f.mustPayment(t, "3.00")
	webhooks := NewWebhookService(f.txnRepo, f.accounts, time.Second)

	if err := webhooks.Deliver(context.Background(), f.globex.TenantID(), txn.TransactionID, constants.WebhookEventPaymentCompleted); err != ErrTransactionNotFound {
		t.Fatalf("foreign tenant delivery want ErrTransactionNotFound got %v", err)
	}

	globexTxn, err := f.ledger.CreatePayment(context.Background(), f.globex, CreatePaymentInput{
		PaymentAccountID: f.globexAcct.ID,
		Amount:           models.MustMoney("3.00"),
	})
	if err != nil {
		t.Fatalf("create globex payment failed: %v", err)
	}
	// 未配置 webhook_url 的账户直接跳过
	if err := webhooks.Deliver(context.Background(), f.globex.TenantID(), globexTxn.TransactionID, constants.WebhookEventPaymentCompleted); err != nil {
		t.Fatalf("account without webhook should be skipped: %v", err)
	}
}
