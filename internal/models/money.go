package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale 账本金额精度：两位小数，四舍五入
const moneyScale = 2

// Money 金额；构造、运算与读写库时都收敛到两位小数，JSON 输出为定点字符串 "12.30"
type Money struct {
	decimal.Decimal
}

func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// ParseMoney 解析十进制字符串，允许前后空白
func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, fmt.Errorf("invalid money %q: %w", raw, err)
	}
	return NewMoneyFromDecimal(d), nil
}

// MustMoney 仅用于常量与测试数据
func MustMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) Money { return NewMoneyFromDecimal(m.Decimal.Add(other.Decimal)) }

func (m Money) Sub(other Money) Money { return NewMoneyFromDecimal(m.Decimal.Sub(other.Decimal)) }

// IsPositive 舍入后大于 0；0.004 视为 0
func (m Money) IsPositive() bool {
	return m.Decimal.Round(moneyScale).Sign() > 0
}

func (m Money) String() string {
	return m.Decimal.StringFixed(moneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 同时接受数字与字符串；null 保持原值
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).Value()
}

// Scan NULL 读为 0；浮点列（sqlite REAL）会带出 70.30000000000001 这类误差，读入后统一舍入
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if value != nil {
		if err := d.Scan(value); err != nil {
			return err
		}
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}
