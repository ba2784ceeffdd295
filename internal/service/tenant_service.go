package service

import (
	"context"
	"errors"
	"strings"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/tenancy"

	"gorm.io/gorm"
)

// TenantRouteInvalidator 租户路由缓存失效接口
type TenantRouteInvalidator interface {
	InvalidateTenantRoute(ctx context.Context, subdomain string) error
}

// CreateTenantInput 租户开通输入
type CreateTenantInput struct {
	Name         string
	Subdomain    string
	ContactEmail string
	ContactPhone string
}

// TenantService 租户服务
type TenantService struct {
	tenantRepo      repository.TenantRepository
	settingsRepo    repository.TenantSettingsRepository
	routes          TenantRouteInvalidator
	defaultCurrency string
}

// NewTenantService 创建租户服务
func NewTenantService(
	tenantRepo repository.TenantRepository,
	settingsRepo repository.TenantSettingsRepository,
	routes TenantRouteInvalidator,
	defaultCurrency string,
) *TenantService {
	currency := normalizeCurrency(defaultCurrency)
	if !validCurrency(currency) {
		currency = constants.DefaultCurrency
	}
	return &TenantService{
		tenantRepo:      tenantRepo,
		settingsRepo:    settingsRepo,
		routes:          routes,
		defaultCurrency: currency,
	}
}

// CreateTenant 开通租户，同时在同一事务内写入默认设置
func (s *TenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	name := truncate(input.Name, 200)
	if name == "" {
		return nil, ErrTenantNameRequired
	}
	subdomain := normalizeSubdomain(input.Subdomain)
	if !validSubdomain(subdomain) {
		return nil, ErrSubdomainInvalid
	}
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if !validEmail(email) {
		return nil, ErrContactEmailInvalid
	}

	if exists, err := s.tenantRepo.ExistsBySubdomain(subdomain); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrSubdomainTaken
	}
	if exists, err := s.tenantRepo.ExistsByContactEmail(email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrContactEmailTaken
	}

	tenant := &models.Tenant{
		Name:         name,
		Subdomain:    subdomain,
		ContactEmail: email,
		ContactPhone: truncate(input.ContactPhone, 50),
		IsActive:     true,
	}
	err := s.tenantRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.WithTx(tx).Create(tenant); err != nil {
			return err
		}
		settings := s.defaultSettings()
		return s.settingsRepo.WithTx(tx).Create(tenancy.Resolved(tenant.ID), settings)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.classifyDuplicate(subdomain, email)
		}
		return nil, err
	}

	s.invalidateRoute(ctx, subdomain)
	logger.Tenant(tenant.ID).Infow("tenant_created", "subdomain", subdomain)
	return tenant, nil
}

func (s *TenantService) defaultSettings() *models.TenantSettings {
	return &models.TenantSettings{
		TransactionFeePercentage: models.MustMoney(constants.DefaultTransactionFeePercent),
		FixedTransactionFee:      models.MustMoney(constants.DefaultFixedTransactionFee),
		DefaultCurrency:          s.defaultCurrency,
		AllowRefunds:             true,
		MaxRefundDays:            constants.DefaultMaxRefundDays,
		WebhookEndpoints:         models.StringArray{},
		EnableEmailNotifications: true,
		ThemeSettings:            models.JSON{},
	}
}

// classifyDuplicate 并发开通时唯一约束冲突的归类
func (s *TenantService) classifyDuplicate(subdomain, email string) error {
	if exists, err := s.tenantRepo.ExistsByContactEmail(email); err == nil && exists {
		if taken, err := s.tenantRepo.ExistsBySubdomain(subdomain); err == nil && !taken {
			return ErrContactEmailTaken
		}
	}
	return ErrSubdomainTaken
}

// GetTenant 获取当前作用域对应的租户
func (s *TenantService) GetTenant(scope tenancy.Scope) (*models.Tenant, error) {
	if !scope.IsResolved() {
		return nil, ErrTenantNotFound
	}
	tenant, err := s.tenantRepo.GetByID(scope.TenantID())
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

// GetBySubdomain 按子域名查询租户（含停用）
func (s *TenantService) GetBySubdomain(subdomain string) (*models.Tenant, error) {
	subdomain = normalizeSubdomain(subdomain)
	if subdomain == "" {
		return nil, ErrTenantNotFound
	}
	tenant, err := s.tenantRepo.GetBySubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

// SetActive 启用或停用租户，并失效子域名路由缓存
func (s *TenantService) SetActive(ctx context.Context, tenantID uint, active bool) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if tenant.IsActive != active {
		if err := s.tenantRepo.SetActive(tenant, active); err != nil {
			return nil, err
		}
	}
	s.invalidateRoute(ctx, tenant.Subdomain)
	logger.Tenant(tenant.ID).Infow("tenant_active_changed", "subdomain", tenant.Subdomain, "is_active", active)
	return tenant, nil
}

func (s *TenantService) invalidateRoute(ctx context.Context, subdomain string) {
	if s.routes == nil {
		return
	}
	if err := s.routes.InvalidateTenantRoute(ctx, subdomain); err != nil {
		logger.Warnw("tenant_route_invalidate_failed", "subdomain", subdomain, "error", err)
	}
}
