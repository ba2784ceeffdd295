package admin

import (
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTenant 获取当前租户
func (h *Handler) GetTenant(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	tenant, err := h.TenantService.GetTenant(scope)
	if err != nil {
		respondMapped(c, err, tenantErrorRules)
		return
	}
	response.Success(c, tenant)
}

// DeactivateTenant 停用当前租户，之后子域名不再解析
func (h *Handler) DeactivateTenant(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	operator, ok := handlershared.CurrentOperator(c)
	if !ok {
		return
	}
	tenant, err := h.TenantService.SetActive(c.Request.Context(), scope.TenantID(), false)
	if err != nil {
		respondMapped(c, err, tenantErrorRules)
		return
	}
	requestLog(c).Infow("tenant_deactivated_by_operator",
		"tenant_id", tenant.ID,
		"operator_id", operator.ID,
		"operator_role", operator.Role,
	)
	response.Success(c, tenant)
}

// GetSettings 获取当前租户设置
func (h *Handler) GetSettings(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	settings, err := h.TenantSettingsService.Get(scope)
	if err != nil {
		respondMapped(c, err, tenantErrorRules)
		return
	}
	response.Success(c, settings)
}

// UpdateSettingsRequest 租户设置更新请求（缺省字段不修改）
type UpdateSettingsRequest struct {
	TransactionFeePercentage *models.Money `json:"transaction_fee_percentage"`
	FixedTransactionFee      *models.Money `json:"fixed_transaction_fee"`
	DefaultCurrency          *string       `json:"default_currency"`
	AllowRefunds             *bool         `json:"allow_refunds"`
	MaxRefundDays            *int          `json:"max_refund_days"`
	CustomDomainURL          *string       `json:"custom_domain_url"`
	WebhookEndpoints         []string      `json:"webhook_endpoints"`
	EnableEmailNotifications *bool         `json:"enable_email_notifications"`
	ThemeSettings            models.JSON   `json:"theme_settings"`
}

// UpdateSettings 更新当前租户设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	settings, err := h.TenantSettingsService.Update(c.Request.Context(), scope, service.UpdateTenantSettingsInput{
		TransactionFeePercentage: req.TransactionFeePercentage,
		FixedTransactionFee:      req.FixedTransactionFee,
		DefaultCurrency:          req.DefaultCurrency,
		AllowRefunds:             req.AllowRefunds,
		MaxRefundDays:            req.MaxRefundDays,
		CustomDomainURL:          req.CustomDomainURL,
		WebhookEndpoints:         req.WebhookEndpoints,
		EnableEmailNotifications: req.EnableEmailNotifications,
		ThemeSettings:            req.ThemeSettings,
	})
	if err != nil {
		respondMapped(c, err, tenantErrorRules)
		return
	}
	response.Success(c, settings)
}
