package shared

import (
	"errors"

	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/service"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则顺序匹配错误，未命中时按错误分类兜底。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	for _, rule := range kindErrorRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, fallbackKey, err)
}

// ConcatMappedErrors 合并多组映射规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var kindErrorRules = []MappedError{
	{Target: tenancy.ErrIsolationViolation, Code: response.CodeForbidden, Key: "error.tenant_isolation"},
	{Target: service.ErrInvalidAmount, Code: response.CodeBadRequest, Key: "error.refund_amount_invalid"},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrDuplicate, Code: response.CodeConflict, Key: "error.bad_request"},
	{Target: service.ErrInvalidState, Code: response.CodeConflict, Key: "error.transaction_status_invalid"},
}

// TenantErrorRules 租户相关错误
var TenantErrorRules = []MappedError{
	{Target: service.ErrTenantNameRequired, Code: response.CodeBadRequest, Key: "error.tenant_name_required"},
	{Target: service.ErrSubdomainInvalid, Code: response.CodeBadRequest, Key: "error.subdomain_invalid"},
	{Target: service.ErrContactEmailInvalid, Code: response.CodeBadRequest, Key: "error.contact_email_invalid"},
	{Target: service.ErrSubdomainTaken, Code: response.CodeConflict, Key: "error.subdomain_taken"},
	{Target: service.ErrContactEmailTaken, Code: response.CodeConflict, Key: "error.contact_email_taken"},
	{Target: service.ErrTenantNotFound, Code: response.CodeNotFound, Key: "error.tenant_not_found"},
	{Target: service.ErrSettingsInvalid, Code: response.CodeBadRequest, Key: "error.settings_invalid"},
	{Target: service.ErrSettingsNotFound, Code: response.CodeNotFound, Key: "error.settings_not_found"},
	{Target: service.ErrCurrencyInvalid, Code: response.CodeBadRequest, Key: "error.currency_invalid"},
}

// PaymentAccountErrorRules 支付账户相关错误
var PaymentAccountErrorRules = []MappedError{
	{Target: service.ErrAccountNameRequired, Code: response.CodeBadRequest, Key: "error.account_name_required"},
	{Target: service.ErrAccountNameTaken, Code: response.CodeConflict, Key: "error.account_name_taken"},
	{Target: service.ErrProviderInvalid, Code: response.CodeBadRequest, Key: "error.account_provider_invalid"},
	{Target: service.ErrAPIKeyRequired, Code: response.CodeBadRequest, Key: "error.account_api_key_required"},
	{Target: service.ErrWebhookURLInvalid, Code: response.CodeBadRequest, Key: "error.account_webhook_invalid"},
	{Target: service.ErrAccountNotFound, Code: response.CodeNotFound, Key: "error.account_not_found"},
}

// LedgerErrorRules 交易账本相关错误
var LedgerErrorRules = []MappedError{
	{Target: service.ErrPaymentAmountInvalid, Code: response.CodeBadRequest, Key: "error.payment_amount_invalid"},
	{Target: service.ErrCurrencyInvalid, Code: response.CodeBadRequest, Key: "error.currency_invalid"},
	{Target: service.ErrCustomerEmailInvalid, Code: response.CodeBadRequest, Key: "error.contact_email_invalid"},
	{Target: service.ErrTimeRangeInvalid, Code: response.CodeBadRequest, Key: "error.date_invalid"},
	{Target: service.ErrAccountNotFound, Code: response.CodeNotFound, Key: "error.account_not_found"},
	{Target: service.ErrTransactionNotFound, Code: response.CodeNotFound, Key: "error.transaction_not_found"},
	{Target: service.ErrTransactionIDDuplicate, Code: response.CodeConflict, Key: "error.transaction_id_duplicate"},
	{Target: service.ErrTransactionStatusInvalid, Code: response.CodeConflict, Key: "error.transaction_status_invalid"},
	{Target: service.ErrRefundsDisabled, Code: response.CodeConflict, Key: "error.refunds_disabled"},
	{Target: service.ErrRefundWindowExpired, Code: response.CodeConflict, Key: "error.refund_window_expired"},
	{Target: service.ErrRefundAmountInvalid, Code: response.CodeBadRequest, Key: "error.refund_amount_invalid"},
	{Target: service.ErrRefundAmountExceeded, Code: response.CodeBadRequest, Key: "error.refund_amount_exceeded"},
}
