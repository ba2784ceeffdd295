package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 交易元数据、主题配置等自由结构列
type JSON map[string]interface{}

// StringArray webhook 地址列表列
type StringArray []string

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	decoded, err := decodeJSONColumn[JSON](value)
	if err == nil && decoded == nil {
		decoded = JSON{}
	}
	*j = decoded
	return err
}

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	decoded, err := decodeJSONColumn[StringArray](value)
	if err == nil && decoded == nil {
		decoded = StringArray{}
	}
	*s = decoded
	return err
}

// decodeJSONColumn 驱动可能返回 []byte（postgres）或 string（sqlite）；NULL 与空串解码为零值
func decodeJSONColumn[T any](value interface{}) (T, error) {
	var out T
	var raw []byte
	switch v := value.(type) {
	case nil:
		return out, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return out, fmt.Errorf("unsupported json column type %T", value)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode json column: %w", err)
	}
	return out, nil
}
