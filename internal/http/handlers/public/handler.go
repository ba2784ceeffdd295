// Package public 无需租户上下文的公开接口：租户开通与按子域名查询。
package public

import (
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/provider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondTenantError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.TenantErrorRules, "error.internal")
}
