package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateKey 唯一约束冲突
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStaleRow 条件更新未命中（状态已变化或行不属于当前租户）
	ErrStaleRow = errors.New("row changed or not visible")
)

// isDuplicateKeyError 识别 sqlite / postgres 的唯一约束冲突
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key value")
}

// translateWriteError 将唯一约束冲突统一为 ErrDuplicateKey
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKeyError(err) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}
