package shared

import (
	"strconv"

	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
)

const (
	// OperatorIDKey 操作员 ID 上下文键
	OperatorIDKey = "operator_id"
	// OperatorRoleKey 操作员角色上下文键
	OperatorRoleKey = "operator_role"
)

// TenantScope 读取中间件写入的租户作用域，未解析时直接响应错误。
func TenantScope(c *gin.Context) (tenancy.Scope, bool) {
	scope := tenancy.FromContext(c.Request.Context())
	if !scope.IsResolved() {
		RespondError(c, response.CodeNotFound, "error.tenant_unresolved", nil)
		return scope, false
	}
	return scope, true
}

// Operator 认证中间件写入的操作员身份
type Operator struct {
	ID   uint
	Role string
}

// CurrentOperator 读取当前操作员，缺失时响应 401。
func CurrentOperator(c *gin.Context) (Operator, bool) {
	id, ok := c.Get(OperatorIDKey)
	operatorID, typed := id.(uint)
	if !ok || !typed || operatorID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return Operator{}, false
	}
	return Operator{ID: operatorID, Role: c.GetString(OperatorRoleKey)}, true
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageQuery 读取 page / page_size 查询参数，非法值回退默认，page_size 上限 100。
func PageQuery(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size"))
	switch {
	case err != nil || pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
