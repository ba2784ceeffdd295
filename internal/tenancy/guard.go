package tenancy

import (
	"errors"
	"fmt"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/models"
)

// ErrIsolationViolation 跨租户写入
var ErrIsolationViolation = errors.New("tenant isolation violation")

// IsolationError 携带违规上下文的隔离错误，errors.Is 匹配 ErrIsolationViolation
type IsolationError struct {
	Operation        string
	ResolvedTenantID uint
	SuppliedTenantID uint
}

func (e *IsolationError) Error() string {
	if e.ResolvedTenantID == 0 {
		return fmt.Sprintf("%s: %s without resolved tenant", ErrIsolationViolation.Error(), e.Operation)
	}
	return fmt.Sprintf("%s: %s for tenant %d under tenant %d",
		ErrIsolationViolation.Error(), e.Operation, e.SuppliedTenantID, e.ResolvedTenantID)
}

// Is 支持 errors.Is(err, ErrIsolationViolation)
func (e *IsolationError) Is(target error) bool {
	return target == ErrIsolationViolation
}

func violation(scope Scope, operation string, supplied uint) error {
	metrics.ObserveIsolationViolation(operation)
	logger.Warnw("tenancy_isolation_violation",
		"operation", operation,
		"resolved_tenant_id", scope.TenantID(),
		"supplied_tenant_id", supplied,
	)
	return &IsolationError{
		Operation:        operation,
		ResolvedTenantID: scope.TenantID(),
		SuppliedTenantID: supplied,
	}
}

// stampTenant 写路径：未设置则填入当前租户，设置了不同租户则拒绝
func stampTenant(scope Scope, operation string, tenantID *uint) error {
	if !scope.IsResolved() {
		return violation(scope, operation, *tenantID)
	}
	if *tenantID == 0 {
		*tenantID = scope.TenantID()
		return nil
	}
	if *tenantID != scope.TenantID() {
		return violation(scope, operation, *tenantID)
	}
	return nil
}

// StampPaymentAccount 支付账户写入前的租户盖章
func StampPaymentAccount(scope Scope, account *models.PaymentAccount) error {
	if account == nil {
		return errors.New("payment account is nil")
	}
	return stampTenant(scope, "create_payment_account", &account.TenantID)
}

// StampTransaction 交易写入前的租户盖章
func StampTransaction(scope Scope, txn *models.Transaction) error {
	if txn == nil {
		return errors.New("transaction is nil")
	}
	return stampTenant(scope, "create_transaction", &txn.TenantID)
}

// StampTenantSettings 租户设置写入前的租户盖章
func StampTenantSettings(scope Scope, settings *models.TenantSettings) error {
	if settings == nil {
		return errors.New("tenant settings is nil")
	}
	return stampTenant(scope, "create_tenant_settings", &settings.TenantID)
}

// GuardOwnership 更新前校验行归属；租户归属字段不可变
func GuardOwnership(scope Scope, operation string, ownerTenantID uint) error {
	if !scope.Allows(ownerTenantID) {
		return violation(scope, operation, ownerTenantID)
	}
	return nil
}
