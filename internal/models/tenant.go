package models

import "time"

// Tenant 租户（按子域名隔离的客户分区）
type Tenant struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                // 主键
	Name         string    `gorm:"type:varchar(200);not null" json:"name"`                              // 租户名称
	Subdomain    string    `gorm:"type:varchar(63);uniqueIndex;not null" json:"subdomain"`              // 子域名（小写）
	ContactEmail string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"contact_email"`         // 联系邮箱
	ContactPhone string    `gorm:"type:varchar(50)" json:"contact_phone"`                               // 联系电话
	IsActive     bool      `gorm:"not null;index" json:"is_active"`                                     // 是否启用
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"created_at"` // 创建时间
	UpdatedAt    time.Time `gorm:"not null;autoCreateTime:false;autoUpdateTime:false" json:"updated_at"` // 更新时间
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}
