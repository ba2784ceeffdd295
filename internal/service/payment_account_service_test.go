package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/secret"
)

func TestPaymentAccountCreateSealsSecret(t *testing.T) {
	f := newLedgerFixture(t)
	if f.acmeAcct.SecretKey == "whsec_primary" || !secret.IsSealed(f.acmeAcct.SecretKey) {
		t.Fatalf("secret key must be sealed at rest: %s", f.acmeAcct.SecretKey)
	}
	stored, err := f.accounts.Get(f.acme, f.acmeAcct.ID)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	plain, err := f.accounts.RevealSecret(stored)
	if err != nil {
		t.Fatalf("reveal secret failed: %v", err)
	}
	if plain != "whsec_primary" {
		t.Fatalf("reveal mismatch: %s", plain)
	}
	if stored.TenantID != f.acme.TenantID() || !stored.IsActive || !stored.IsTestMode {
		t.Fatalf("unexpected stored account: %+v", stored)
	}
}

func TestPaymentAccountValidation(t *testing.T) {
	f := newLedgerFixture(t)
	cases := []struct {
		name  string
		input CreatePaymentAccountInput
		want  error
	}{
		{"missing name", CreatePaymentAccountInput{Provider: "stripe", APIKey: "k"}, ErrAccountNameRequired},
		{"bad provider", CreatePaymentAccountInput{AccountName: "x", Provider: "bitcoin", APIKey: "k"}, ErrProviderInvalid},
		{"missing api key", CreatePaymentAccountInput{AccountName: "x", Provider: "Stripe"}, ErrAPIKeyRequired},
		{"bad webhook", CreatePaymentAccountInput{AccountName: "x", Provider: "paypal", APIKey: "k", WebhookURL: "mailto:a@b.c"}, ErrWebhookURLInvalid},
		{"name taken", CreatePaymentAccountInput{AccountName: "primary", Provider: "square", APIKey: "k"}, ErrAccountNameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.accounts.Create(f.acme, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
	// 同名账户在不同租户下互不冲突
	if _, err := f.accounts.Create(f.globex, CreatePaymentAccountInput{AccountName: "secondary", Provider: constants.PaymentProviderRazorpay, APIKey: "rzp_test"}); err != nil {
		t.Fatalf("create globex account failed: %v", err)
	}
	if _, err := f.accounts.Create(f.acme, CreatePaymentAccountInput{AccountName: "secondary", Provider: constants.PaymentProviderRazorpay, APIKey: "rzp_test"}); err != nil {
		t.Fatalf("same name in another tenant should succeed: %v", err)
	}
}

func TestPaymentAccountIsolationAndDeactivate(t *testing.T) {
	f := newLedgerFixture(t)
	if _, err := f.accounts.Get(f.globex, f.acmeAcct.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("foreign get want ErrAccountNotFound got %v", err)
	}
	if _, err := f.accounts.Deactivate(f.globex, f.acmeAcct.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign deactivate want ErrNotFound got %v", err)
	}

	list, total, err := f.accounts.List(f.acme, repository.PaymentAccountListFilter{})
	if err != nil {
		t.Fatalf("list accounts failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != f.acmeAcct.ID {
		t.Fatalf("acme should only see its own account, got %d", total)
	}

	account, err := f.accounts.Deactivate(f.acme, f.acmeAcct.ID)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if account.IsActive {
		t.Fatalf("account should be inactive")
	}
	if _, err := f.accounts.Deactivate(f.acme, f.acmeAcct.ID); err != nil {
		t.Fatalf("deactivate should be idempotent: %v", err)
	}
	active, _, err := f.accounts.List(f.acme, repository.PaymentAccountListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("inactive account must be filtered out")
	}
	if !strings.HasPrefix(f.acmeAcct.MaskedAPIKey(), "sk_t") || strings.Contains(f.acmeAcct.MaskedAPIKey(), "T1zdp7dc") {
		t.Fatalf("api key not masked: %s", f.acmeAcct.MaskedAPIKey())
	}
}
