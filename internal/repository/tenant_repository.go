package repository

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/audit"
	"github.com/paygate-next/internal/models"

	"gorm.io/gorm"
)

// TenantRepository 租户数据访问接口（租户表本身不受作用域过滤）
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetBySubdomain(subdomain string) (*models.Tenant, error)
	GetActiveBySubdomain(subdomain string) (*models.Tenant, error)
	ExistsBySubdomain(subdomain string) (bool, error)
	ExistsByContactEmail(email string) (bool, error)
	SetActive(tenant *models.Tenant, active bool) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTenantRepository
}

// GormTenantRepository GORM 实现
type GormTenantRepository struct {
	db      *gorm.DB
	stamper audit.Stamper
}

// NewTenantRepository 创建租户仓库
func NewTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db, stamper: audit.NewStamper()}
}

// WithTx 绑定事务
func (r *GormTenantRepository) WithTx(tx *gorm.DB) *GormTenantRepository {
	if tx == nil {
		return r
	}
	return &GormTenantRepository{db: tx, stamper: r.stamper}
}

// WithStamper 替换审计时间源
func (r *GormTenantRepository) WithStamper(stamper audit.Stamper) *GormTenantRepository {
	return &GormTenantRepository{db: r.db, stamper: stamper}
}

// Transaction 开启事务
func (r *GormTenantRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建租户
func (r *GormTenantRepository) Create(tenant *models.Tenant) error {
	if tenant == nil {
		return errors.New("tenant is nil")
	}
	tenant.Subdomain = strings.ToLower(strings.TrimSpace(tenant.Subdomain))
	r.stamper.StampCreateTenant(tenant)
	return translateWriteError(r.db.Create(tenant).Error)
}

// GetByID 根据 ID 获取租户
func (r *GormTenantRepository) GetByID(id uint) (*models.Tenant, error) {
	if id == 0 {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// GetBySubdomain 根据子域名获取租户（含停用）
func (r *GormTenantRepository) GetBySubdomain(subdomain string) (*models.Tenant, error) {
	return r.findBySubdomain(subdomain, false)
}

// GetActiveBySubdomain 根据子域名获取启用中的租户
func (r *GormTenantRepository) GetActiveBySubdomain(subdomain string) (*models.Tenant, error) {
	return r.findBySubdomain(subdomain, true)
}

func (r *GormTenantRepository) findBySubdomain(subdomain string, activeOnly bool) (*models.Tenant, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, nil
	}
	query := r.db.Where("subdomain = ?", subdomain)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var tenant models.Tenant
	if err := query.First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// ExistsBySubdomain 子域名是否已被占用
func (r *GormTenantRepository) ExistsBySubdomain(subdomain string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).
		Where("subdomain = ?", strings.ToLower(strings.TrimSpace(subdomain))).
		Count(&count).Error
	return count > 0, err
}

// ExistsByContactEmail 联系邮箱是否已被注册
func (r *GormTenantRepository) ExistsByContactEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).
		Where("contact_email = ?", strings.TrimSpace(email)).
		Count(&count).Error
	return count > 0, err
}

// SetActive 启用或停用租户（租户不做物理删除）
func (r *GormTenantRepository) SetActive(tenant *models.Tenant, active bool) error {
	if tenant == nil || tenant.ID == 0 {
		return errors.New("tenant is nil")
	}
	tenant.IsActive = active
	r.stamper.StampUpdateTenant(tenant)
	result := r.db.Model(&models.Tenant{}).
		Where("id = ?", tenant.ID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": tenant.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}
