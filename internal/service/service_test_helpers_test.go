package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/secret"
	"github.com/paygate-next/internal/tenancy"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db         *gorm.DB
	tenants    *TenantService
	settings   *TenantSettingsService
	accounts   *PaymentAccountService
	ledger     *LedgerService
	txnRepo    *repository.GormTransactionRepository
	routes     *recordingRoutes
	notifier   *recordingNotifier
	capturer   *switchCapturer
	acme       tenancy.Scope
	globex     tenancy.Scope
	acmeAcct   *models.PaymentAccount
	globexAcct *models.PaymentAccount
}

type recordingRoutes struct {
	mu          sync.Mutex
	invalidated []string
}

func (r *recordingRoutes) InvalidateTenantRoute(_ context.Context, subdomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, subdomain)
	return nil
}

type notification struct {
	TenantID      uint
	TransactionID string
	Event         string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyTransaction(_ context.Context, tenantID uint, transactionID, event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{TenantID: tenantID, TransactionID: transactionID, Event: event})
	return nil
}

func (n *recordingNotifier) snapshot() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

type switchCapturer struct {
	mu      sync.Mutex
	decline bool
}

func (c *switchCapturer) set(decline bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decline = decline
}

func (c *switchCapturer) Capture(_ context.Context, _ *models.PaymentAccount, _ *models.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decline {
		return ErrCaptureDeclined
	}
	return nil
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateWith(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureWithDB(t, setupServiceDB(t))
}

func newLedgerFixtureWithDB(t *testing.T, db *gorm.DB) *ledgerFixture {
	t.Helper()
	box, err := secret.NewBox("service-test-key")
	if err != nil {
		t.Fatalf("new box failed: %v", err)
	}

	tenantRepo := repository.NewTenantRepository(db)
	settingsRepo := repository.NewTenantSettingsRepository(db)
	accountRepo := repository.NewPaymentAccountRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	f := &ledgerFixture{
		db:       db,
		txnRepo:  txnRepo,
		routes:   &recordingRoutes{},
		notifier: &recordingNotifier{},
		capturer: &switchCapturer{},
	}
	f.tenants = NewTenantService(tenantRepo, settingsRepo, f.routes, "USD")
	f.settings = NewTenantSettingsService(settingsRepo)
	f.accounts = NewPaymentAccountService(accountRepo, box)
	f.ledger = NewLedgerService(txnRepo, accountRepo, settingsRepo, f.capturer, f.notifier)

	acme := f.mustTenant(t, "acme")
	globex := f.mustTenant(t, "globex")
	f.acme = tenancy.Resolved(acme.ID)
	f.globex = tenancy.Resolved(globex.ID)
	f.acmeAcct = f.mustAccount(t, f.acme, "primary", "https://hooks.acme.test/ledger")
	f.globexAcct = f.mustAccount(t, f.globex, "primary", "")
	return f
}

func (f *ledgerFixture) mustTenant(t *testing.T, subdomain string) *models.Tenant {
	t.Helper()
	tenant, err := f.tenants.CreateTenant(context.Background(), CreateTenantInput{
		Name:         subdomain + " Corp",
		Subdomain:    subdomain,
		ContactEmail: "billing@" + subdomain + ".test",
	})
	if err != nil {
		t.Fatalf("create tenant %s failed: %v", subdomain, err)
	}
	return tenant
}

func (f *ledgerFixture) mustAccount(t *testing.T, scope tenancy.Scope, name, webhook string) *models.PaymentAccount {
	t.Helper()
	account, err := f.accounts.Create(scope, CreatePaymentAccountInput{
		AccountName: name,
		Provider:    constants.PaymentProviderStripe,
		APIKey:      "sk_test_4eC39HqLyjWDarjtT1zdp7dc",
		SecretKey:   "whsec_" + name,
		WebhookURL:  webhook,
		IsTestMode:  true,
	})
	if err != nil {
		t.Fatalf("create account %s failed: %v", name, err)
	}
	return account
}

func (f *ledgerFixture) mustPayment(t *testing.T, amount string) *models.Transaction {
	t.Helper()
	txn, err := f.ledger.CreatePayment(context.Background(), f.acme, CreatePaymentInput{
		PaymentAccountID: f.acmeAcct.ID,
		Amount:           models.MustMoney(amount),
		Currency:         "usd",
		CustomerEmail:    "buyer@example.com",
		CustomerName:     "Buyer",
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return txn
}

func moneyPtr(raw string) *models.Money {
	m := models.MustMoney(raw)
	return &m
}
