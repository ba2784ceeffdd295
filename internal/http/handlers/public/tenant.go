package public

import (
	"time"

	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OnboardTenantRequest 租户开通请求
type OnboardTenantRequest struct {
	Name         string `json:"name" binding:"required"`
	Subdomain    string `json:"subdomain" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required"`
	ContactPhone string `json:"contact_phone"`
}

// PublicTenantView 公开的租户信息
type PublicTenantView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toPublicTenantView(tenant *models.Tenant) PublicTenantView {
	return PublicTenantView{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Subdomain: tenant.Subdomain,
		IsActive:  tenant.IsActive,
		CreatedAt: tenant.CreatedAt,
	}
}

// OnboardTenant 开通租户
func (h *Handler) OnboardTenant(c *gin.Context) {
	var req OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	tenant, err := h.TenantService.CreateTenant(c.Request.Context(), service.CreateTenantInput{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		respondTenantError(c, err)
		return
	}
	response.Success(c, tenant)
}

// GetTenantBySubdomain 按子域名查询租户公开信息
func (h *Handler) GetTenantBySubdomain(c *gin.Context) {
	tenant, err := h.TenantService.GetBySubdomain(c.Param("subdomain"))
	if err != nil {
		respondTenantError(c, err)
		return
	}
	response.Success(c, toPublicTenantView(tenant))
}
