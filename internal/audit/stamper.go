// Package audit 负责实体的创建/更新时间戳，与租户无关。
package audit

import (
	"time"

	"github.com/paygate-next/internal/models"
)

// Stamper 审计时间戳写入器
// Now 为空时使用系统时钟，所有时间统一为 UTC。
type Stamper struct {
	Now func() time.Time
}

// NewStamper 创建使用系统时钟的写入器
func NewStamper() Stamper {
	return Stamper{}
}

// Time 返回当前 UTC 时间，截断到微秒与 PostgreSQL 精度一致
func (s Stamper) Time() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Normalize(now())
}

// Normalize 转为 UTC 并截断到微秒
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (s Stamper) stampCreate(createdAt, updatedAt *time.Time) {
	now := s.Time()
	if createdAt.IsZero() {
		*createdAt = now
	} else {
		*createdAt = Normalize(*createdAt)
	}
	*updatedAt = now
}

// StampCreateTenant 租户创建时间戳
func (s Stamper) StampCreateTenant(t *models.Tenant) {
	if t == nil {
		return
	}
	s.stampCreate(&t.CreatedAt, &t.UpdatedAt)
}

// StampUpdateTenant 租户更新时间戳
func (s Stamper) StampUpdateTenant(t *models.Tenant) {
	if t == nil {
		return
	}
	t.UpdatedAt = s.Time()
}

// StampCreateTenantSettings 租户设置创建时间戳
func (s Stamper) StampCreateTenantSettings(settings *models.TenantSettings) {
	if settings == nil {
		return
	}
	s.stampCreate(&settings.CreatedAt, &settings.UpdatedAt)
}

// StampUpdateTenantSettings 租户设置更新时间戳
func (s Stamper) StampUpdateTenantSettings(settings *models.TenantSettings) {
	if settings == nil {
		return
	}
	settings.UpdatedAt = s.Time()
}

// StampCreatePaymentAccount 支付账户创建时间戳
func (s Stamper) StampCreatePaymentAccount(account *models.PaymentAccount) {
	if account == nil {
		return
	}
	s.stampCreate(&account.CreatedAt, &account.UpdatedAt)
}

// StampUpdatePaymentAccount 支付账户更新时间戳
func (s Stamper) StampUpdatePaymentAccount(account *models.PaymentAccount) {
	if account == nil {
		return
	}
	account.UpdatedAt = s.Time()
}

// StampCreateTransaction 交易创建时间戳
func (s Stamper) StampCreateTransaction(txn *models.Transaction) {
	if txn == nil {
		return
	}
	s.stampCreate(&txn.CreatedAt, &txn.UpdatedAt)
}

// StampUpdateTransaction 交易更新时间戳
func (s Stamper) StampUpdateTransaction(txn *models.Transaction) {
	if txn == nil {
		return
	}
	txn.UpdatedAt = s.Time()
}
