package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentAccountView 支付账户响应（凭据脱敏）
type PaymentAccountView struct {
	ID          uint      `json:"id"`
	TenantID    uint      `json:"tenant_id"`
	AccountName string    `json:"account_name"`
	Provider    string    `json:"provider"`
	APIKey      string    `json:"api_key"`
	HasSecret   bool      `json:"has_secret"`
	WebhookURL  string    `json:"webhook_url"`
	IsActive    bool      `json:"is_active"`
	IsTestMode  bool      `json:"is_test_mode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPaymentAccountView(account *models.PaymentAccount) PaymentAccountView {
	return PaymentAccountView{
		ID:          account.ID,
		TenantID:    account.TenantID,
		AccountName: account.AccountName,
		Provider:    account.Provider,
		APIKey:      account.MaskedAPIKey(),
		HasSecret:   account.HasSecret(),
		WebhookURL:  account.WebhookURL,
		IsActive:    account.IsActive,
		IsTestMode:  account.IsTestMode,
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	}
}

// CreatePaymentAccountRequest 创建支付账户请求
type CreatePaymentAccountRequest struct {
	AccountName string `json:"account_name" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
	APIKey      string `json:"api_key" binding:"required"`
	SecretKey   string `json:"secret_key"`
	WebhookURL  string `json:"webhook_url"`
	IsTestMode  *bool  `json:"is_test_mode"`
}

// CreatePaymentAccount 创建支付账户
func (h *Handler) CreatePaymentAccount(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	var req CreatePaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	testMode := true
	if req.IsTestMode != nil {
		testMode = *req.IsTestMode
	}
	account, err := h.PaymentAccountService.Create(scope, service.CreatePaymentAccountInput{
		AccountName: req.AccountName,
		Provider:    req.Provider,
		APIKey:      req.APIKey,
		SecretKey:   req.SecretKey,
		WebhookURL:  req.WebhookURL,
		IsTestMode:  testMode,
	})
	if err != nil {
		respondMapped(c, err, accountErrorRules)
		return
	}
	response.Success(c, toPaymentAccountView(account))
}

// ListPaymentAccounts 获取支付账户列表
func (h *Handler) ListPaymentAccounts(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))

	accounts, total, err := h.PaymentAccountService.List(scope, repository.PaymentAccountListFilter{
		Page:       page,
		PageSize:   pageSize,
		Provider:   strings.TrimSpace(c.Query("provider")),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		respondMapped(c, err, accountErrorRules)
		return
	}
	items := make([]PaymentAccountView, 0, len(accounts))
	for i := range accounts {
		items = append(items, toPaymentAccountView(&accounts[i]))
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetPaymentAccount 获取支付账户详情
func (h *Handler) GetPaymentAccount(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	account, err := h.PaymentAccountService.Get(scope, id)
	if err != nil {
		respondMapped(c, err, accountErrorRules)
		return
	}
	response.Success(c, toPaymentAccountView(account))
}

// DeactivatePaymentAccount 停用支付账户（幂等）
func (h *Handler) DeactivatePaymentAccount(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	account, err := h.PaymentAccountService.Deactivate(scope, id)
	if err != nil {
		respondMapped(c, err, accountErrorRules)
		return
	}
	response.Success(c, toPaymentAccountView(account))
}

func parseAccountID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.account_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}
