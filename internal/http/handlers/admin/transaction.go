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

// ProcessPaymentRequest 发起支付请求
type ProcessPaymentRequest struct {
	PaymentAccountID      uint                   `json:"payment_account_id" binding:"required"`
	Amount                models.Money           `json:"amount"`
	Currency              string                 `json:"currency"`
	ExternalTransactionID string                 `json:"external_transaction_id"`
	Description           string                 `json:"description"`
	CustomerEmail         string                 `json:"customer_email"`
	CustomerName          string                 `json:"customer_name"`
	Metadata              map[string]interface{} `json:"metadata"`
}

// ProcessPayment 创建并处理一笔支付
func (h *Handler) ProcessPayment(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	txn, err := h.LedgerService.CreatePayment(c.Request.Context(), scope, service.CreatePaymentInput{
		PaymentAccountID:      req.PaymentAccountID,
		Amount:                req.Amount,
		Currency:              req.Currency,
		ExternalTransactionID: req.ExternalTransactionID,
		Description:           req.Description,
		CustomerEmail:         req.CustomerEmail,
		CustomerName:          req.CustomerName,
		Metadata:              models.JSON(req.Metadata),
	})
	if err != nil {
		respondMapped(c, err, ledgerErrorRules)
		return
	}
	response.Success(c, txn)
}

// ListTransactions 按条件分页查询当前租户的交易（按创建时间倒序）
func (h *Handler) ListTransactions(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)

	var accountID uint
	if raw := strings.TrimSpace(c.Query("payment_account_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.account_id_invalid", nil)
			return
		}
		accountID = uint(parsed)
	}
	createdFrom, err := parseTimeQuery(c.Query("created_from"), false)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return
	}
	createdTo, err := parseTimeQuery(c.Query("created_to"), true)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return
	}

	metadataKey := strings.TrimSpace(c.Query("metadata_key"))
	if metadataKey != "" && !repository.ValidMetadataKey(metadataKey) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	txns, total, err := h.LedgerService.ListTransactions(scope, repository.TransactionListFilter{
		Page:             page,
		PageSize:         pageSize,
		Status:           strings.TrimSpace(c.Query("status")),
		Type:             strings.TrimSpace(c.Query("type")),
		PaymentAccountID: accountID,
		CreatedFrom:      createdFrom,
		CreatedTo:        createdTo,
		Keyword:          strings.TrimSpace(c.Query("keyword")),
		MetadataKey:      metadataKey,
		MetadataValue:    c.Query("metadata_value"),
	})
	if err != nil {
		respondMapped(c, err, ledgerErrorRules)
		return
	}
	response.SuccessWithPage(c, txns, response.BuildPagination(page, pageSize, total))
}

// GetTransaction 获取交易详情
func (h *Handler) GetTransaction(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	txn, err := h.LedgerService.GetTransaction(scope, c.Param("transaction_id"))
	if err != nil {
		respondMapped(c, err, ledgerErrorRules)
		return
	}
	response.Success(c, txn)
}

// RefundRequest 退款请求，amount 缺省时全额退款
type RefundRequest struct {
	Amount *models.Money `json:"amount"`
	Reason string        `json:"reason"`
}

// RefundTransaction 对支付交易发起退款
func (h *Handler) RefundTransaction(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	var req RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}
	refund, err := h.LedgerService.Refund(c.Request.Context(), scope, service.RefundInput{
		TransactionID: c.Param("transaction_id"),
		Amount:        req.Amount,
		Reason:        req.Reason,
	})
	if err != nil {
		respondMapped(c, err, ledgerErrorRules)
		return
	}
	response.Success(c, refund)
}

// CancelTransaction 取消未完成的交易
func (h *Handler) CancelTransaction(c *gin.Context) {
	scope, ok := tenantScope(c)
	if !ok {
		return
	}
	txn, err := h.LedgerService.CancelTransaction(c.Request.Context(), scope, c.Param("transaction_id"))
	if err != nil {
		respondMapped(c, err, ledgerErrorRules)
		return
	}
	response.Success(c, txn)
}

// parseTimeQuery 支持 RFC3339 与日期两种格式，日期作为结束边界时取当天最后时刻
func parseTimeQuery(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		value := parsed.UTC()
		return &value, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	value := parsed.UTC()
	return &value, nil
}
