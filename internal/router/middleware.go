package router

import (
	"strings"
	"time"

	"github.com/paygate-next/internal/authz"
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/i18n"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/service"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware 沿用调用方的 X-Request-ID，缺失时生成 UUID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLogMiddleware 每个请求结束后输出一条 http_request 日志
func AccessLogMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	log := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if scope := tenancy.FromContext(c.Request.Context()); scope.IsResolved() {
			fields = append(fields, "tenant_id", scope.TenantID())
		}
		if len(c.Errors) > 0 {
			log.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
			return
		}
		log.Infow("http_request", fields...)
	}
}

// TenantContextMiddleware 按 Host 解析租户，未解析出租户的请求直接 404
func TenantContextMiddleware(resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			logger.Errorw("tenant_resolver_unavailable")
			abortWithKey(c, response.CodeInternal, "error.tenant_resolve_failed")
			return
		}
		scope, err := resolver.Resolve(c.Request.Context(), c.Request.Host)
		switch {
		case err != nil:
			logger.Errorw("tenant_resolve_failed", "request_id", getRequestID(c), "host", c.Request.Host, "error", err)
			abortWithKey(c, response.CodeInternal, "error.tenant_resolve_failed")
			return
		case !scope.IsResolved():
			abortWithKey(c, response.CodeNotFound, "error.tenant_unresolved")
			return
		}
		c.Request = c.Request.WithContext(tenancy.WithScope(c.Request.Context(), scope))
		c.Next()
	}
}

// bearerToken 取出 Authorization: Bearer <token>，返回失败时的 i18n key
func bearerToken(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", "error.auth_header_missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return "", "error.auth_header_invalid"
	}
	return token, ""
}

// OperatorAuthMiddleware 校验操作员令牌；令牌签发的租户必须等于 Host 解析出的租户
func OperatorAuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(secretKey) == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		token, failKey := bearerToken(c)
		if failKey != "" {
			abortWithKey(c, response.CodeUnauthorized, failKey)
			return
		}
		claims, err := service.ParseOperatorToken(secretKey, token)
		if err != nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		scope := tenancy.FromContext(c.Request.Context())
		if !scope.IsResolved() {
			abortWithKey(c, response.CodeNotFound, "error.tenant_unresolved")
			return
		}
		if claims.TenantID != scope.TenantID() {
			metrics.ObserveIsolationViolation("operator_token")
			logger.Warnw("operator_tenant_mismatch",
				"request_id", getRequestID(c),
				"operator_id", claims.UserID,
				"token_tenant_id", claims.TenantID,
				"resolved_tenant_id", scope.TenantID(),
			)
			abortWithKey(c, response.CodeForbidden, "error.tenant_isolation")
			return
		}

		c.Set(handlershared.OperatorIDKey, claims.UserID)
		c.Set(handlershared.OperatorRoleKey, claims.Role)
		c.Next()
	}
}

// OperatorRBACMiddleware 按操作员角色与路由模板鉴权
func OperatorRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetString(handlershared.OperatorRoleKey))
		if role == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := authzService.Allow(role, route, c.Request.Method)
		if err != nil {
			logger.Errorw("operator_rbac_enforce_failed", "role", role, "method", c.Request.Method, "route", route, "error", err)
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("operator_rbac_permission_denied",
				"role", role,
				"tenant_id", tenancy.FromContext(c.Request.Context()).TenantID(),
				"method", c.Request.Method,
				"route", authz.RouteObject(route),
			)
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}

func abortWithKey(c *gin.Context, code int, key string) {
	response.Error(c, code, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}
