package repository

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/audit"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/tenancy"

	"gorm.io/gorm"
)

// PaymentAccountRepository 支付账户数据访问接口，所有方法都经过租户作用域
type PaymentAccountRepository interface {
	Create(scope tenancy.Scope, account *models.PaymentAccount) error
	GetByID(scope tenancy.Scope, id uint) (*models.PaymentAccount, error)
	GetActiveByID(scope tenancy.Scope, id uint) (*models.PaymentAccount, error)
	ExistsByName(scope tenancy.Scope, name string) (bool, error)
	List(scope tenancy.Scope, filter PaymentAccountListFilter) ([]models.PaymentAccount, int64, error)
	Deactivate(scope tenancy.Scope, account *models.PaymentAccount) error
	WithTx(tx *gorm.DB) *GormPaymentAccountRepository
}

// GormPaymentAccountRepository GORM 实现
type GormPaymentAccountRepository struct {
	db      *gorm.DB
	stamper audit.Stamper
}

// NewPaymentAccountRepository 创建支付账户仓库
func NewPaymentAccountRepository(db *gorm.DB) *GormPaymentAccountRepository {
	return &GormPaymentAccountRepository{db: db, stamper: audit.NewStamper()}
}

// WithTx 绑定事务
func (r *GormPaymentAccountRepository) WithTx(tx *gorm.DB) *GormPaymentAccountRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentAccountRepository{db: tx, stamper: r.stamper}
}

// Create 创建支付账户：隔离校验 → 审计时间 → 插入
func (r *GormPaymentAccountRepository) Create(scope tenancy.Scope, account *models.PaymentAccount) error {
	if err := tenancy.StampPaymentAccount(scope, account); err != nil {
		return err
	}
	r.stamper.StampCreatePaymentAccount(account)
	return translateWriteError(r.db.Create(account).Error)
}

// GetByID 获取当前租户下的支付账户
func (r *GormPaymentAccountRepository) GetByID(scope tenancy.Scope, id uint) (*models.PaymentAccount, error) {
	return r.find(scope, id, false)
}

// GetActiveByID 获取当前租户下启用中的支付账户
func (r *GormPaymentAccountRepository) GetActiveByID(scope tenancy.Scope, id uint) (*models.PaymentAccount, error) {
	return r.find(scope, id, true)
}

func (r *GormPaymentAccountRepository) find(scope tenancy.Scope, id uint, activeOnly bool) (*models.PaymentAccount, error) {
	if id == 0 {
		return nil, nil
	}
	query := r.db.Scopes(scope.Filter(tenancy.DefaultColumn)).Where("id = ?", id)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var account models.PaymentAccount
	if err := query.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ExistsByName 账户名称在当前租户内是否已存在
func (r *GormPaymentAccountRepository) ExistsByName(scope tenancy.Scope, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentAccount{}).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Where("account_name = ?", strings.TrimSpace(name)).
		Count(&count).Error
	return count > 0, err
}

// List 支付账户列表（按名称排序）
func (r *GormPaymentAccountRepository) List(scope tenancy.Scope, filter PaymentAccountListFilter) ([]models.PaymentAccount, int64, error) {
	query := r.db.Model(&models.PaymentAccount{}).Scopes(scope.Filter(tenancy.DefaultColumn))
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(pageScope(filter.Page, filter.PageSize))

	var accounts []models.PaymentAccount
	if err := query.Order("account_name ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Deactivate 停用支付账户（软删除）
func (r *GormPaymentAccountRepository) Deactivate(scope tenancy.Scope, account *models.PaymentAccount) error {
	if account == nil || account.ID == 0 {
		return errors.New("payment account is nil")
	}
	if err := tenancy.GuardOwnership(scope, "deactivate_payment_account", account.TenantID); err != nil {
		return err
	}
	account.IsActive = false
	r.stamper.StampUpdatePaymentAccount(account)
	result := r.db.Model(&models.PaymentAccount{}).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}
