package repository

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var metadataKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidMetadataKey 元数据键只允许字母数字、下划线与短横线；键会拼进 SQL，必须先校验
func ValidMetadataKey(key string) bool {
	return metadataKeyPattern.MatchString(key)
}

// dialect 只区分 postgres 与其余（按 sqlite 处理）
type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

func dialectOf(db *gorm.DB) dialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	return parseDialect(db.Dialector.Name())
}

func parseDialect(name string) dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// jsonText 取 JSON 列中 key 的文本值
func (d dialect) jsonText(column, key string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	// 键名加引号，避免 - 被 json path 解析
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// keywordFilter 在多列上做不区分大小写的包含匹配，返回带括号的条件与参数；没有有效列时条件为空
func (d dialect) keywordFilter(keyword string, columns []string) (string, []interface{}) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	match := "%s ILIKE ?"
	if d != dialectPostgres {
		// sqlite 的 LIKE 对 ASCII 已不区分大小写，但要显式声明反斜杠为转义符
		match = `%s LIKE ? ESCAPE '\'`
	}
	var parts []string
	var args []interface{}
	for _, column := range columns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(match, column))
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
