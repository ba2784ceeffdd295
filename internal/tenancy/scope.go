// Package tenancy 解析请求所属租户，并在读写两侧强制租户隔离。
//
// 解析结果是一次调用内的值（Scope），通过参数与 context.Context 显式传递，
// 任何长生命周期对象都不持有当前租户。
package tenancy

import (
	"fmt"

	"gorm.io/gorm"
)

// DefaultColumn 租户归属字段
const DefaultColumn = "tenant_id"

// Scope 一次调用的租户作用域，零值表示未解析
type Scope struct {
	tenantID uint
}

// Resolved 构造已解析的作用域；id 为 0 时等价于未解析
func Resolved(tenantID uint) Scope {
	return Scope{tenantID: tenantID}
}

// Unresolved 未解析的作用域
func Unresolved() Scope {
	return Scope{}
}

// TenantID 当前租户 ID，未解析时为 0
func (s Scope) TenantID() uint {
	return s.tenantID
}

// IsResolved 是否已解析到租户
func (s Scope) IsResolved() bool {
	return s.tenantID != 0
}

// Allows 判断归属于 ownerTenantID 的行在本作用域内是否可见
func (s Scope) Allows(ownerTenantID uint) bool {
	return s.tenantID != 0 && ownerTenantID == s.tenantID
}

// Filter 返回读路径使用的 gorm scope；未解析时恒为空结果
func (s Scope) Filter(column string) func(*gorm.DB) *gorm.DB {
	if column == "" {
		column = DefaultColumn
	}
	return func(db *gorm.DB) *gorm.DB {
		if !s.IsResolved() {
			return db.Where("1 = 0")
		}
		return db.Where(fmt.Sprintf("%s = ?", column), s.tenantID)
	}
}

// String 用于日志输出
func (s Scope) String() string {
	if !s.IsResolved() {
		return "tenant:unresolved"
	}
	return fmt.Sprintf("tenant:%d", s.tenantID)
}
