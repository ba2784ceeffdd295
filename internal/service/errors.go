package service

import "errors"

// 错误分类：具体错误通过 errors.Is 匹配其分类
var (
	ErrValidation   = errors.New("validation error")
	ErrDuplicate    = errors.New("duplicate error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidAmount 退款金额错误，同时属于校验错误
	ErrInvalidAmount = &kindError{kind: ErrValidation, msg: "invalid amount"}
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Is(target error) bool {
	return target == e.kind || errors.Is(e.kind, target)
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrTenantNameRequired   = newKindError(ErrValidation, "tenant name is required")
	ErrSubdomainInvalid     = newKindError(ErrValidation, "subdomain is invalid")
	ErrContactEmailInvalid  = newKindError(ErrValidation, "contact email is invalid")
	ErrAccountNameRequired  = newKindError(ErrValidation, "account name is required")
	ErrProviderInvalid      = newKindError(ErrValidation, "payment provider is invalid")
	ErrAPIKeyRequired       = newKindError(ErrValidation, "api key is required")
	ErrWebhookURLInvalid    = newKindError(ErrValidation, "webhook url is invalid")
	ErrPaymentAmountInvalid = newKindError(ErrValidation, "payment amount must be positive")
	ErrCurrencyInvalid      = newKindError(ErrValidation, "currency is invalid")
	ErrCustomerEmailInvalid = newKindError(ErrValidation, "customer email is invalid")
	ErrSettingsInvalid      = newKindError(ErrValidation, "tenant settings are invalid")

	ErrSubdomainTaken         = newKindError(ErrDuplicate, "subdomain already exists")
	ErrContactEmailTaken      = newKindError(ErrDuplicate, "contact email already exists")
	ErrAccountNameTaken       = newKindError(ErrDuplicate, "payment account name already exists")
	ErrTransactionIDDuplicate = newKindError(ErrDuplicate, "transaction id collision")

	ErrTenantNotFound      = newKindError(ErrNotFound, "tenant not found")
	ErrAccountNotFound     = newKindError(ErrNotFound, "payment account not found")
	ErrTransactionNotFound = newKindError(ErrNotFound, "transaction not found")
	ErrSettingsNotFound    = newKindError(ErrNotFound, "tenant settings not found")

	ErrTransactionStatusInvalid = newKindError(ErrInvalidState, "transaction status does not allow this operation")
	ErrRefundsDisabled          = newKindError(ErrInvalidState, "refunds are disabled for this tenant")
	ErrRefundWindowExpired      = newKindError(ErrInvalidState, "refund window has expired")

	ErrRefundAmountInvalid  = newKindError(ErrInvalidAmount, "refund amount must be positive")
	ErrRefundAmountExceeded = newKindError(ErrInvalidAmount, "refund amount exceeds refundable balance")
)

// ErrTimeRangeInvalid 查询时间范围起点晚于终点
var ErrTimeRangeInvalid = newKindError(ErrValidation, "time range is invalid")
