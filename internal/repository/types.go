package repository

import (
	"time"

	"gorm.io/gorm"
)

// pageScope 分页 scope，pageSize <= 0 时不分页
func pageScope(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}

// PaymentAccountListFilter 查询支付账户列表的过滤条件
type PaymentAccountListFilter struct {
	Page       int
	PageSize   int
	Provider   string
	ActiveOnly bool
}

// TransactionListFilter 查询交易列表的过滤条件（时间边界为闭区间）
type TransactionListFilter struct {
	Page             int
	PageSize         int
	Status           string
	Type             string
	PaymentAccountID uint
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Keyword          string
	MetadataKey      string
	MetadataValue    string
	WithAccount      bool
}
