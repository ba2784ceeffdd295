package models

import (
	"strings"
	"time"
)

// PaymentAccount 租户的支付渠道账户
type PaymentAccount struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                                                   // 主键
	TenantID    uint      `gorm:"not null;uniqueIndex:idx_payment_accounts_tenant_name,priority:1" json:"tenant_id"`                      // 租户ID
	AccountName string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_accounts_tenant_name,priority:2" json:"account_name"` // 账户名称（租户内唯一）
	Provider    string    `gorm:"type:varchar(32);not null" json:"provider"`                                                              // 提供方 stripe/paypal/square/razorpay
	APIKey      string    `gorm:"type:varchar(500);not null" json:"-"`                                                                    // API Key
	SecretKey   string    `gorm:"type:text" json:"-"`                                                                                     // 密钥（加密存储）
	WebhookURL  string    `gorm:"type:varchar(500)" json:"webhook_url"`                                                                   // 回调通知地址
	IsActive    bool      `gorm:"not null;index" json:"is_active"`                                                                        // 是否启用
	IsTestMode  bool      `gorm:"not null" json:"is_test_mode"`                                                                           // 是否测试模式
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (PaymentAccount) TableName() string {
	return "payment_accounts"
}

// MaskedAPIKey 返回脱敏后的 API Key
func (a PaymentAccount) MaskedAPIKey() string {
	key := strings.TrimSpace(a.APIKey)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// HasSecret 是否配置了密钥
func (a PaymentAccount) HasSecret() bool {
	return strings.TrimSpace(a.SecretKey) != ""
}
