package shared

import (
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/i18n"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 请求级日志，带 request_id，租户已解析时带 tenant_id。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	fields := make([]interface{}, 0, 4)
	if c != nil {
		if id := c.GetString("request_id"); id != "" {
			fields = append(fields, "request_id", id)
		}
		if c.Request != nil {
			if scope := tenancy.FromContext(c.Request.Context()); scope.IsResolved() {
				fields = append(fields, "tenant_id", scope.TenantID())
			}
		}
	}
	return logger.SW(fields...)
}

// RespondError 按 i18n key 输出错误；err 非空说明是未预期错误，需要落日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"key", key,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
