package models

import "time"

// TenantSettings 租户设置（费率、默认币种、退款策略）
type TenantSettings struct {
	ID                       uint        `gorm:"primarykey" json:"id"`
	TenantID                 uint        `gorm:"uniqueIndex;not null" json:"tenant_id"`
	TransactionFeePercentage Money       `gorm:"type:decimal(5,2);not null;default:0" json:"transaction_fee_percentage"`
	FixedTransactionFee      Money       `gorm:"type:decimal(18,2);not null;default:0" json:"fixed_transaction_fee"`
	DefaultCurrency          string      `gorm:"type:varchar(3);not null" json:"default_currency"`
	AllowRefunds             bool        `gorm:"not null" json:"allow_refunds"`
	MaxRefundDays            int         `gorm:"not null" json:"max_refund_days"`
	CustomDomainURL          string      `gorm:"type:varchar(500)" json:"custom_domain_url"`
	WebhookEndpoints         StringArray `gorm:"type:json" json:"webhook_endpoints"`
	EnableEmailNotifications bool        `gorm:"not null" json:"enable_email_notifications"`
	ThemeSettings            JSON        `gorm:"type:json" json:"theme_settings"`
	CreatedAt                time.Time   `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"created_at"`
	UpdatedAt                time.Time   `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"updated_at"`
}

// TableName 指定表名
func (TenantSettings) TableName() string {
	return "tenant_settings"
}
