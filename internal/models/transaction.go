package models

import (
	"time"

	"github.com/paygate-next/internal/constants"
)

// Transaction 账本交易（支付、退款、拒付）
type Transaction struct {
	ID                    uint            `gorm:"primarykey" json:"id"`                                                                                               // 主键
	TenantID              uint            `gorm:"not null;index:idx_transactions_tenant_created,priority:1" json:"tenant_id"`                                         // 租户ID
	PaymentAccountID      uint            `gorm:"not null;index" json:"payment_account_id"`                                                                           // 支付账户ID
	TransactionID         string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`                                                        // 内部交易号（全局唯一）
	ExternalTransactionID string          `gorm:"type:varchar(128);index" json:"external_transaction_id"`                                                             // 外部交易号
	ParentTransactionID   string          `gorm:"type:varchar(64);index" json:"parent_transaction_id,omitempty"`                                                      // 退款关联的原交易号
	Amount                Money           `gorm:"type:decimal(18,2);not null" json:"amount"`                                                                          // 金额
	RefundedAmount        Money           `gorm:"type:decimal(18,2);not null;default:0" json:"refunded_amount"`                                                       // 已退款金额
	FeeAmount             Money           `gorm:"type:decimal(18,2);not null;default:0" json:"fee_amount"`                                                            // 手续费
	Currency              string          `gorm:"type:varchar(3);not null" json:"currency"`                                                                           // 币种
	Status                string          `gorm:"type:varchar(32);index;not null" json:"status"`                                                                      // 状态
	Type                  string          `gorm:"type:varchar(32);not null" json:"type"`                                                                              // 类型
	Description           string          `gorm:"type:varchar(500)" json:"description"`                                                                               // 描述
	CustomerEmail         string          `gorm:"type:varchar(255)" json:"customer_email"`                                                                            // 客户邮箱
	CustomerName          string          `gorm:"type:varchar(200)" json:"customer_name"`                                                                             // 客户名称
	Metadata              JSON            `gorm:"type:json" json:"metadata"`                                                                                          // 元数据
	CreatedAt             time.Time       `gorm:"not null;autoCreateTime:false;autoUpdateTime:false;index:idx_transactions_tenant_created,priority:2" json:"created_at"` // 创建时间
	UpdatedAt             time.Time       `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"updated_at"`                                               // 更新时间
	ProcessedAt           *time.Time      `json:"processed_at"`                                                                                                        // 处理完成时间
	PaymentAccount        *PaymentAccount `gorm:"foreignKey:PaymentAccountID" json:"payment_account,omitempty"`                                                       // 支付账户
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsPayment 是否为支付交易
func (t Transaction) IsPayment() bool {
	return t.Type == constants.TransactionTypePayment
}

// RemainingRefundable 剩余可退金额
func (t Transaction) RemainingRefundable() Money {
	return t.Amount.Sub(t.RefundedAmount)
}
