package main

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/service"
	"github.com/paygate-next/internal/tenancy"
)

type demoTenant struct {
	input    service.CreateTenantInput
	accounts []service.CreatePaymentAccountInput
	payments []string
}

var demoTenants = []demoTenant{
	{
		input: service.CreateTenantInput{
			Name:         "Acme Corp",
			Subdomain:    "acme",
			ContactEmail: "billing@acme.example",
			ContactPhone: "+1-555-0100",
		},
		accounts: []service.CreatePaymentAccountInput{
			{AccountName: "Acme Stripe", Provider: constants.PaymentProviderStripe, APIKey: "pk_test_acme_0001", SecretKey: "sk_test_acme_0001", IsTestMode: true},
			{AccountName: "Acme PayPal", Provider: constants.PaymentProviderPayPal, APIKey: "paypal_acme_client", SecretKey: "paypal_acme_secret", IsTestMode: true},
		},
		payments: []string{"100.00", "19.99", "250.50"},
	},
	{
		input: service.CreateTenantInput{
			Name:         "Globex Inc",
			Subdomain:    "globex",
			ContactEmail: "finance@globex.example",
		},
		accounts: []service.CreatePaymentAccountInput{
			{AccountName: "Globex Square", Provider: constants.PaymentProviderSquare, APIKey: "sq_globex_0001", IsTestMode: true},
		},
		payments: []string{"42.00"},
	},
}

func main() {
	var activate, deactivate string
	var tokenTTL time.Duration
	flag.StringVar(&activate, "activate", "", "启用指定子域名的租户")
	flag.StringVar(&deactivate, "deactivate", "", "停用指定子域名的租户")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "演示操作员令牌有效期")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	c := provider.NewContainer(cfg)
	ctx := context.Background()

	if activate != "" || deactivate != "" {
		if activate != "" {
			toggleTenant(ctx, c, activate, true)
		}
		if deactivate != "" {
			toggleTenant(ctx, c, deactivate, false)
		}
		return
	}

	for _, demo := range demoTenants {
		tenant, err := c.TenantService.CreateTenant(ctx, demo.input)
		switch {
		case errors.Is(err, service.ErrSubdomainTaken):
			stdLog.Printf("Tenant already exists: %s", demo.input.Subdomain)
			continue
		case err != nil:
			stdLog.Fatalf("Failed to create tenant %s: %v", demo.input.Subdomain, err)
		}
		stdLog.Printf("Created tenant: %s (id=%d)", tenant.Subdomain, tenant.ID)
		scope := tenancy.Resolved(tenant.ID)

		var firstAccountID uint
		for _, input := range demo.accounts {
			account, err := c.PaymentAccountService.Create(scope, input)
			if err != nil {
				stdLog.Printf("Failed to create account %s: %v", input.AccountName, err)
				continue
			}
			if firstAccountID == 0 {
				firstAccountID = account.ID
			}
			stdLog.Printf("Created payment account: %s (id=%d)", account.AccountName, account.ID)
		}
		if firstAccountID == 0 {
			continue
		}

		for i, raw := range demo.payments {
			txn, err := c.LedgerService.CreatePayment(ctx, scope, service.CreatePaymentInput{
				PaymentAccountID: firstAccountID,
				Amount:           models.MustMoney(raw),
				Description:      "Seed payment",
				CustomerEmail:    "customer" + string(rune('a'+i)) + "@example.com",
			})
			if err != nil {
				stdLog.Printf("Failed to create payment %s: %v", raw, err)
				continue
			}
			stdLog.Printf("Created payment: %s %s %s (fee %s)", txn.TransactionID, txn.Amount.String(), txn.Currency, txn.FeeAmount.String())
		}

		for _, role := range []string{constants.OperatorRoleAdmin, constants.OperatorRoleUser} {
			token, err := service.SignOperatorToken(cfg.JWT.SecretKey, service.OperatorClaims{
				UserID:   1,
				TenantID: tenant.ID,
				Role:     role,
			}, tokenTTL)
			if err != nil {
				stdLog.Printf("Failed to sign %s token: %v", role, err)
				continue
			}
			stdLog.Printf("Operator token [%s/%s]: %s", tenant.Subdomain, role, token)
		}
	}

	stdLog.Println("Seed completed")
}

func toggleTenant(ctx context.Context, c *provider.Container, subdomain string, active bool) {
	stdLog := logger.StdLogger()
	tenant, err := c.TenantService.GetBySubdomain(strings.ToLower(strings.TrimSpace(subdomain)))
	if err != nil {
		stdLog.Fatalf("Failed to find tenant %s: %v", subdomain, err)
	}
	if _, err := c.TenantService.SetActive(ctx, tenant.ID, active); err != nil {
		stdLog.Fatalf("Failed to update tenant %s: %v", subdomain, err)
	}
	stdLog.Printf("Tenant %s is_active=%v", tenant.Subdomain, active)
}
