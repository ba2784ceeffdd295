package router

import (
	"strings"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/config"
	adminhandlers "github.com/paygate-next/internal/http/handlers/admin"
	publichandlers "github.com/paygate-next/internal/http/handlers/public"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/provider"

	"github.com/gin-gonic/gin"
)

const tenantAPIPrefix = "/api/v1"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/租户控制台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	limiter := NewRateLimiter(cache.Client())
	onboardRule := NewRateLimitRule("onboard", "error.onboard_too_many", cfg.Security.OnboardRateLimit)
	paymentRule := NewRateLimitRule("payment", "error.payment_too_many", cfg.Security.PaymentRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware())
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, metrics.Handler())
	}

	apiV1 := r.Group(tenantAPIPrefix)
	{
		// 公开接口（无需租户上下文）
		public := apiV1.Group("/public")
		{
			public.POST("/tenants", limiter.Middleware(onboardRule, OnboardingKey), publicHandler.OnboardTenant)
			public.GET("/tenants/:subdomain", publicHandler.GetTenantBySubdomain)
		}

		// 租户接口：Host 解析租户 -> 操作员令牌 -> 角色策略
		tenant := apiV1.Group("")
		tenant.Use(
			TenantContextMiddleware(c.TenantResolver),
			OperatorAuthMiddleware(cfg.JWT.SecretKey),
			OperatorRBACMiddleware(c.AuthzService),
		)
		{
			tenant.GET("/tenant", adminHandler.GetTenant)
			tenant.POST("/tenant/deactivate", adminHandler.DeactivateTenant)
			tenant.GET("/tenant/settings", adminHandler.GetSettings)
			tenant.PUT("/tenant/settings", adminHandler.UpdateSettings)
			tenant.GET("/tenant/permissions", permissionsHandler(r, c.AuthzService))

			tenant.POST("/payment-accounts", adminHandler.CreatePaymentAccount)
			tenant.GET("/payment-accounts", adminHandler.ListPaymentAccounts)
			tenant.GET("/payment-accounts/:id", adminHandler.GetPaymentAccount)
			tenant.DELETE("/payment-accounts/:id", adminHandler.DeactivatePaymentAccount)

			tenant.POST("/transactions/process", limiter.Middleware(paymentRule, TenantKey), adminHandler.ProcessPayment)
			tenant.GET("/transactions", adminHandler.ListTransactions)
			tenant.GET("/transactions/:transaction_id", adminHandler.GetTransaction)
			tenant.POST("/transactions/:transaction_id/refund", adminHandler.RefundTransaction)
			tenant.POST("/transactions/:transaction_id/cancel", adminHandler.CancelTransaction)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
