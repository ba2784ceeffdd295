// Package admin 租户控制台接口：请求到达时租户已由 Host 解析，操作员已通过令牌与角色校验。
package admin

import (
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// 账本操作可能同时返回租户设置类错误（退款开关、窗口）
var (
	tenantErrorRules  = handlershared.TenantErrorRules
	accountErrorRules = handlershared.PaymentAccountErrorRules
	ledgerErrorRules  = handlershared.ConcatMappedErrors(handlershared.LedgerErrorRules, handlershared.TenantErrorRules)
)

func tenantScope(c *gin.Context) (tenancy.Scope, bool) { return handlershared.TenantScope(c) }

func requestLog(c *gin.Context) *zap.SugaredLogger { return handlershared.RequestLog(c) }

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMapped(c *gin.Context, err error, rules []handlershared.MappedError) {
	handlershared.RespondMappedError(c, err, rules, "error.internal")
}
