package repository

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/audit"
	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/tenancy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository 账本交易数据访问接口，所有方法都经过租户作用域
type TransactionRepository interface {
	Create(scope tenancy.Scope, txn *models.Transaction) error
	GetByTransactionID(scope tenancy.Scope, transactionID string) (*models.Transaction, error)
	GetByTransactionIDForUpdate(scope tenancy.Scope, transactionID string) (*models.Transaction, error)
	SumCompletedRefunds(scope tenancy.Scope, parentTransactionID string) (models.Money, error)
	UpdateState(scope tenancy.Scope, txn *models.Transaction, fromStatuses ...string) error
	List(scope tenancy.Scope, filter TransactionListFilter) ([]models.Transaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// transactionSearchColumns 关键字检索列
var transactionSearchColumns = []string{"transaction_id", "external_transaction_id", "description", "customer_email", "customer_name"}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db      *gorm.DB
	stamper audit.Stamper
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db, stamper: audit.NewStamper()}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx, stamper: r.stamper}
}

// WithStamper 替换审计时间源
func (r *GormTransactionRepository) WithStamper(stamper audit.Stamper) *GormTransactionRepository {
	return &GormTransactionRepository{db: r.db, stamper: stamper}
}

// Transaction 开启事务
func (r *GormTransactionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 写入交易：隔离校验 → 审计时间 → 插入
func (r *GormTransactionRepository) Create(scope tenancy.Scope, txn *models.Transaction) error {
	if err := tenancy.StampTransaction(scope, txn); err != nil {
		return err
	}
	r.stamper.StampCreateTransaction(txn)
	return translateWriteError(r.db.Omit(clause.Associations).Create(txn).Error)
}

// GetByTransactionID 按交易号获取（附带支付账户摘要）
func (r *GormTransactionRepository) GetByTransactionID(scope tenancy.Scope, transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	var txn models.Transaction
	err := r.db.Scopes(scope.Filter(tenancy.DefaultColumn)).
		Preload("PaymentAccount", scope.Filter(tenancy.DefaultColumn)).
		Where("transaction_id = ?", transactionID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByTransactionIDForUpdate 按交易号加行锁获取（需在事务内调用）
func (r *GormTransactionRepository) GetByTransactionIDForUpdate(scope tenancy.Scope, transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	var txn models.Transaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Where("transaction_id = ?", transactionID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// SumCompletedRefunds 统计原交易下已完成退款的合计金额
func (r *GormTransactionRepository) SumCompletedRefunds(scope tenancy.Scope, parentTransactionID string) (models.Money, error) {
	var amounts []models.Money
	err := r.db.Model(&models.Transaction{}).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Where("parent_transaction_id = ? AND type = ? AND status = ?",
			parentTransactionID, constants.TransactionTypeRefund, constants.TransactionStatusCompleted).
		Pluck("amount", &amounts).Error
	if err != nil {
		return models.Money{}, err
	}
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount.Decimal)
	}
	return models.NewMoneyFromDecimal(total), nil
}

// UpdateState 条件更新交易状态：只有当前状态属于 fromStatuses 时才生效
func (r *GormTransactionRepository) UpdateState(scope tenancy.Scope, txn *models.Transaction, fromStatuses ...string) error {
	if txn == nil || txn.ID == 0 {
		return errors.New("transaction is nil")
	}
	if err := tenancy.GuardOwnership(scope, "update_transaction", txn.TenantID); err != nil {
		return err
	}
	r.stamper.StampUpdateTransaction(txn)
	query := r.db.Model(&models.Transaction{}).
		Scopes(scope.Filter(tenancy.DefaultColumn)).
		Where("id = ?", txn.ID)
	if len(fromStatuses) > 0 {
		query = query.Where("status IN ?", fromStatuses)
	}
	result := query.Updates(map[string]interface{}{
		"status":                  txn.Status,
		"external_transaction_id": txn.ExternalTransactionID,
		"refunded_amount":         txn.RefundedAmount,
		"processed_at":            txn.ProcessedAt,
		"updated_at":              txn.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}

// List 交易列表（按创建时间倒序，时间边界为闭区间）
func (r *GormTransactionRepository) List(scope tenancy.Scope, filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{}).Scopes(scope.Filter(tenancy.DefaultColumn))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.PaymentAccountID != 0 {
		query = query.Where("payment_account_id = ?", filter.PaymentAccountID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo.UTC())
	}
	d := dialectOf(r.db)
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		if condition, args := d.keywordFilter(keyword, transactionSearchColumns); condition != "" {
			query = query.Where(condition, args...)
		}
	}
	if filter.MetadataKey != "" && ValidMetadataKey(filter.MetadataKey) {
		query = query.Where(d.jsonText("metadata", filter.MetadataKey)+" = ?", filter.MetadataValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(pageScope(filter.Page, filter.PageSize))
	if filter.WithAccount {
		query = query.Preload("PaymentAccount", scope.Filter(tenancy.DefaultColumn))
	}

	var txns []models.Transaction
	if err := query.Order("created_at DESC, id DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
