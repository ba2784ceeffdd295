package repository

import (
	"errors"

	"github.com/paygate-next/internal/audit"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/tenancy"

	"gorm.io/gorm"
)

// TenantSettingsRepository 租户设置数据访问接口
type TenantSettingsRepository interface {
	Create(scope tenancy.Scope, settings *models.TenantSettings) error
	Get(scope tenancy.Scope) (*models.TenantSettings, error)
	Update(scope tenancy.Scope, settings *models.TenantSettings) error
	WithTx(tx *gorm.DB) *GormTenantSettingsRepository
}

// GormTenantSettingsRepository GORM 实现
type GormTenantSettingsRepository struct {
	db      *gorm.DB
	stamper audit.Stamper
}

// NewTenantSettingsRepository 创建租户设置仓库
func NewTenantSettingsRepository(db *gorm.DB) *GormTenantSettingsRepository {
	return &GormTenantSettingsRepository{db: db, stamper: audit.NewStamper()}
}

// WithTx 绑定事务
func (r *GormTenantSettingsRepository) WithTx(tx *gorm.DB) *GormTenantSettingsRepository {
	if tx == nil {
		return r
	}
	return &GormTenantSettingsRepository{db: tx, stamper: r.stamper}
}

// Create 写入租户设置：隔离校验 → 审计时间 → 插入
func (r *GormTenantSettingsRepository) Create(scope tenancy.Scope, settings *models.TenantSettings) error {
	if err := tenancy.StampTenantSettings(scope, settings); err != nil {
		return err
	}
	r.stamper.StampCreateTenantSettings(settings)
	return translateWriteError(r.db.Create(settings).Error)
}

// Get 获取当前租户设置
func (r *GormTenantSettingsRepository) Get(scope tenancy.Scope) (*models.TenantSettings, error) {
	var settings models.TenantSettings
	if err := r.db.Scopes(scope.Filter(tenancy.DefaultColumn)).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Update 更新租户设置（tenant_id 与创建时间不可变）
func (r *GormTenantSettingsRepository) Update(scope tenancy.Scope, settings *models.TenantSettings) error {
	if settings == nil || settings.ID == 0 {
		return errors.New("tenant settings is nil")
	}
	if err := tenancy.GuardOwnership(scope, "update_tenant_settings", settings.TenantID); err != nil {
		return err
	}
	r.stamper.StampUpdateTenantSettings(settings)
	result := r.db.Model(settings).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(settings)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}
