package service

import (
	"context"
	"errors"
	"strings"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/tenancy"

	"github.com/shopspring/decimal"
)

// UpdateTenantSettingsInput 租户设置更新输入（nil 表示不修改）
type UpdateTenantSettingsInput struct {
	TransactionFeePercentage *models.Money
	FixedTransactionFee      *models.Money
	DefaultCurrency          *string
	AllowRefunds             *bool
	MaxRefundDays            *int
	CustomDomainURL          *string
	WebhookEndpoints         []string
	EnableEmailNotifications *bool
	ThemeSettings            models.JSON
}

// TenantSettingsService 租户设置服务
type TenantSettingsService struct {
	settingsRepo repository.TenantSettingsRepository
}

// NewTenantSettingsService 创建租户设置服务
func NewTenantSettingsService(settingsRepo repository.TenantSettingsRepository) *TenantSettingsService {
	return &TenantSettingsService{settingsRepo: settingsRepo}
}

// Get 获取当前租户设置
func (s *TenantSettingsService) Get(scope tenancy.Scope) (*models.TenantSettings, error) {
	settings, err := s.settingsRepo.Get(scope)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrSettingsNotFound
	}
	return settings, nil
}

// Update 更新当前租户设置
func (s *TenantSettingsService) Update(ctx context.Context, scope tenancy.Scope, input UpdateTenantSettingsInput) (*models.TenantSettings, error) {
	settings, err := s.Get(scope)
	if err != nil {
		return nil, err
	}
	if err := applySettingsInput(settings, input); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Update(scope, settings); err != nil {
		if errors.Is(err, repository.ErrStaleRow) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	logger.Tenant(scope.TenantID()).Infow("tenant_settings_updated")
	return settings, nil
}

func applySettingsInput(settings *models.TenantSettings, input UpdateTenantSettingsInput) error {
	hundred := decimal.NewFromInt(100)
	if input.TransactionFeePercentage != nil {
		pct := input.TransactionFeePercentage.Decimal
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return ErrSettingsInvalid
		}
		settings.TransactionFeePercentage = models.NewMoneyFromDecimal(pct)
	}
	if input.FixedTransactionFee != nil {
		if input.FixedTransactionFee.Decimal.IsNegative() {
			return ErrSettingsInvalid
		}
		settings.FixedTransactionFee = *input.FixedTransactionFee
	}
	if input.DefaultCurrency != nil {
		currency := normalizeCurrency(*input.DefaultCurrency)
		if !validCurrency(currency) {
			return ErrCurrencyInvalid
		}
		settings.DefaultCurrency = currency
	}
	if input.AllowRefunds != nil {
		settings.AllowRefunds = *input.AllowRefunds
	}
	if input.MaxRefundDays != nil {
		if *input.MaxRefundDays < 0 {
			return ErrSettingsInvalid
		}
		settings.MaxRefundDays = *input.MaxRefundDays
	}
	if input.CustomDomainURL != nil {
		custom := strings.TrimSpace(*input.CustomDomainURL)
		if !validWebhookURL(custom) {
			return ErrSettingsInvalid
		}
		settings.CustomDomainURL = custom
	}
	if input.WebhookEndpoints != nil {
		endpoints := make(models.StringArray, 0, len(input.WebhookEndpoints))
		for _, endpoint := range input.WebhookEndpoints {
			endpoint = strings.TrimSpace(endpoint)
			if endpoint == "" {
				continue
			}
			if !validWebhookURL(endpoint) {
				return ErrSettingsInvalid
			}
			endpoints = append(endpoints, endpoint)
		}
		settings.WebhookEndpoints = endpoints
	}
	if input.EnableEmailNotifications != nil {
		settings.EnableEmailNotifications = *input.EnableEmailNotifications
	}
	if input.ThemeSettings != nil {
		settings.ThemeSettings = input.ThemeSettings
	}
	return nil
}
