package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paygate-next/internal/audit"
	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/metrics"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/tenancy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions 交易状态机
var allowedTransitions = map[string][]string{
	constants.TransactionStatusPending: {
		constants.TransactionStatusProcessing,
		constants.TransactionStatusCancelled,
	},
	constants.TransactionStatusProcessing: {
		constants.TransactionStatusCompleted,
		constants.TransactionStatusFailed,
		constants.TransactionStatusCancelled,
	},
	constants.TransactionStatusCompleted: {
		constants.TransactionStatusPartiallyRefunded,
		constants.TransactionStatusRefunded,
	},
	constants.TransactionStatusPartiallyRefunded: {
		constants.TransactionStatusPartiallyRefunded,
		constants.TransactionStatusRefunded,
	},
}

// CanTransition 判断状态迁移是否合法
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isRefundable(status string) bool {
	return status == constants.TransactionStatusCompleted || status == constants.TransactionStatusPartiallyRefunded
}

// WebhookNotifier 交易事件通知（提交后异步投递）
type WebhookNotifier interface {
	NotifyTransaction(ctx context.Context, tenantID uint, transactionID, event string) error
}

// CreatePaymentInput 创建支付输入
type CreatePaymentInput struct {
	PaymentAccountID      uint
	Amount                models.Money
	Currency              string
	ExternalTransactionID string
	Description           string
	CustomerEmail         string
	CustomerName          string
	Metadata              models.JSON
}

// RefundInput 退款输入，Amount 为空时按原交易全额退款
type RefundInput struct {
	TransactionID string
	Amount        *models.Money
	Reason        string
}

// LedgerService 交易账本服务
type LedgerService struct {
	txnRepo      repository.TransactionRepository
	accountRepo  repository.PaymentAccountRepository
	settingsRepo repository.TenantSettingsRepository
	capturer     Capturer
	notifier     WebhookNotifier
	now          func() time.Time
	newID        func() string
}

// NewLedgerService 创建账本服务
func NewLedgerService(
	txnRepo repository.TransactionRepository,
	accountRepo repository.PaymentAccountRepository,
	settingsRepo repository.TenantSettingsRepository,
	capturer Capturer,
	notifier WebhookNotifier,
) *LedgerService {
	if capturer == nil {
		capturer = SimulatedCapturer{}
	}
	return &LedgerService{
		txnRepo:      txnRepo,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		capturer:     capturer,
		notifier:     notifier,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// SetClock 替换时钟
func (s *LedgerService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *LedgerService) utcNow() time.Time {
	return audit.Normalize(s.now())
}

// CreatePayment 创建支付并立即扣款：pending → processing → completed | failed
func (s *LedgerService) CreatePayment(ctx context.Context, scope tenancy.Scope, input CreatePaymentInput) (*models.Transaction, error) {
	if !scope.IsResolved() {
		return nil, tenancy.GuardOwnership(scope, "create_transaction", 0)
	}
	amount := models.NewMoneyFromDecimal(input.Amount.Decimal.Round(2))
	if !amount.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}
	customerEmail := strings.TrimSpace(input.CustomerEmail)
	if customerEmail != "" && !validEmail(customerEmail) {
		return nil, ErrCustomerEmailInvalid
	}

	settings, err := s.settingsRepo.Get(scope)
	if err != nil {
		return nil, err
	}
	currency := normalizeCurrency(input.Currency)
	if currency == "" {
		currency = constants.DefaultCurrency
		if settings != nil && settings.DefaultCurrency != "" {
			currency = settings.DefaultCurrency
		}
	}
	if !validCurrency(currency) {
		return nil, ErrCurrencyInvalid
	}

	account, err := s.accountRepo.GetActiveByID(scope, input.PaymentAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	externalID := strings.TrimSpace(input.ExternalTransactionID)
	if externalID == "" {
		externalID = uuid.NewString()
	}
	txn := &models.Transaction{
		PaymentAccountID:      account.ID,
		TransactionID:         s.newID(),
		ExternalTransactionID: truncate(externalID, 128),
		Amount:                amount,
		RefundedAmount:        models.NewMoneyFromDecimal(decimal.Zero),
		FeeAmount:             calculateFee(amount, settings),
		Currency:              currency,
		Status:                constants.TransactionStatusPending,
		Type:                  constants.TransactionTypePayment,
		Description:           truncate(input.Description, 500),
		CustomerEmail:         customerEmail,
		CustomerName:          truncate(input.CustomerName, 100),
		Metadata:              input.Metadata,
	}

	log := logger.Tenant(scope.TenantID(), "transaction_id", txn.TransactionID)
	err = s.txnRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.txnRepo.WithTx(tx)
		if err := repo.Create(scope, txn); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrTransactionIDDuplicate
			}
			return err
		}
		if err := s.transition(repo, scope, txn, constants.TransactionStatusProcessing); err != nil {
			return err
		}
		if captureErr := s.capturer.Capture(ctx, account, txn); captureErr != nil {
			log.Warnw("ledger_capture_failed", "account_id", account.ID, "error", captureErr)
			return s.transition(repo, scope, txn, constants.TransactionStatusFailed)
		}
		processedAt := s.utcNow()
		txn.ProcessedAt = &processedAt
		if err := s.transition(repo, scope, txn, constants.TransactionStatusCompleted); err != nil {
			txn.ProcessedAt = nil
			return err
		}
		return nil
	})
	if err != nil {
		log.Errorw("ledger_payment_create_failed", "error", err)
		return nil, err
	}

	metrics.ObservePayment(txn.Status)
	log.Infow("ledger_payment_finalized",
		"status", txn.Status,
		"amount", txn.Amount.String(),
		"currency", txn.Currency,
	)
	event := constants.WebhookEventPaymentCompleted
	if txn.Status == constants.TransactionStatusFailed {
		event = constants.WebhookEventPaymentFailed
	}
	s.notify(ctx, account, txn, event)
	txn.PaymentAccount = account
	return txn, nil
}

// Refund 对原支付发起退款，累计退款不得超过原金额
func (s *LedgerService) Refund(ctx context.Context, scope tenancy.Scope, input RefundInput) (*models.Transaction, error) {
	if !scope.IsResolved() {
		return nil, tenancy.GuardOwnership(scope, "create_refund", 0)
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return nil, ErrTransactionNotFound
	}
	if input.Amount != nil && !input.Amount.Decimal.Round(2).IsPositive() {
		metrics.ObserveRefund("rejected")
		return nil, ErrRefundAmountInvalid
	}

	log := logger.Tenant(scope.TenantID(), "original_transaction_id", transactionID)
	var refund *models.Transaction
	err := s.txnRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.txnRepo.WithTx(tx)
		original, err := repo.GetByTransactionIDForUpdate(scope, transactionID)
		if err != nil {
			return err
		}
		if original == nil || !original.IsPayment() {
			return ErrTransactionNotFound
		}
		if !isRefundable(original.Status) {
			return ErrTransactionStatusInvalid
		}
		now := s.utcNow()
		settings, err := s.settingsRepo.WithTx(tx).Get(scope)
		if err != nil {
			return err
		}
		if err := checkRefundPolicy(settings, original, now); err != nil {
			return err
		}

		refundAmount := original.Amount
		if input.Amount != nil {
			refundAmount = models.NewMoneyFromDecimal(input.Amount.Decimal.Round(2))
		}
		refunded, err := repo.SumCompletedRefunds(scope, original.TransactionID)
		if err != nil {
			return err
		}
		remaining := original.Amount.Sub(refunded)
		if refundAmount.Decimal.GreaterThan(remaining.Decimal) {
			log.Warnw("ledger_refund_rejected",
				"requested", refundAmount.String(),
				"refunded", refunded.String(),
				"original", original.Amount.String(),
			)
			return ErrRefundAmountExceeded
		}

		var metadata models.JSON
		if reason := truncate(input.Reason, 500); reason != "" {
			metadata = models.JSON{"reason": reason}
		}
		refund = &models.Transaction{
			PaymentAccountID:      original.PaymentAccountID,
			TransactionID:         s.newID(),
			ExternalTransactionID: uuid.NewString(),
			ParentTransactionID:   original.TransactionID,
			Amount:                refundAmount,
			RefundedAmount:        models.NewMoneyFromDecimal(decimal.Zero),
			FeeAmount:             models.NewMoneyFromDecimal(decimal.Zero),
			Currency:              original.Currency,
			Status:                constants.TransactionStatusCompleted,
			Type:                  constants.TransactionTypeRefund,
			Description:           fmt.Sprintf("Refund for transaction %s", original.TransactionID),
			CustomerEmail:         original.CustomerEmail,
			CustomerName:          original.CustomerName,
			Metadata:              metadata,
			ProcessedAt:           &now,
		}
		if err := repo.Create(scope, refund); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrTransactionIDDuplicate
			}
			return err
		}

		totalRefunded := refunded.Add(refundAmount)
		original.RefundedAmount = totalRefunded
		next := constants.TransactionStatusPartiallyRefunded
		if !totalRefunded.Decimal.LessThan(original.Amount.Decimal) {
			next = constants.TransactionStatusRefunded
		}
		return s.transition(repo, scope, original, next)
	})
	if err != nil {
		metrics.ObserveRefund("rejected")
		if !isExpectedLedgerError(err) {
			log.Errorw("ledger_refund_failed", "error", err)
		}
		return nil, err
	}

	metrics.ObserveRefund("completed")
	log.Infow("ledger_refund_completed",
		"refund_transaction_id", refund.TransactionID,
		"amount", refund.Amount.String(),
	)
	account, err := s.accountRepo.GetByID(scope, refund.PaymentAccountID)
	if err != nil {
		log.Warnw("ledger_refund_account_load_failed", "error", err)
	}
	s.notify(ctx, account, refund, constants.WebhookEventRefundCompleted)
	refund.PaymentAccount = account
	return refund, nil
}

func checkRefundPolicy(settings *models.TenantSettings, original *models.Transaction, now time.Time) error {
	if settings == nil {
		return nil
	}
	if !settings.AllowRefunds {
		return ErrRefundsDisabled
	}
	if settings.MaxRefundDays > 0 {
		anchor := original.CreatedAt
		if original.ProcessedAt != nil {
			anchor = *original.ProcessedAt
		}
		deadline := anchor.Add(time.Duration(settings.MaxRefundDays) * 24 * time.Hour)
		if now.After(deadline) {
			return ErrRefundWindowExpired
		}
	}
	return nil
}

// GetTransaction 获取当前租户的交易
func (s *LedgerService) GetTransaction(scope tenancy.Scope, transactionID string) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByTransactionID(scope, transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions 当前租户的交易列表（创建时间倒序，时间边界闭区间）
func (s *LedgerService) ListTransactions(scope tenancy.Scope, filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return nil, 0, ErrTimeRangeInvalid
	}
	return s.txnRepo.List(scope, filter)
}

// CancelTransaction 取消尚未完成的交易
func (s *LedgerService) CancelTransaction(ctx context.Context, scope tenancy.Scope, transactionID string) (*models.Transaction, error) {
	if !scope.IsResolved() {
		return nil, tenancy.GuardOwnership(scope, "cancel_transaction", 0)
	}
	var txn *models.Transaction
	err := s.txnRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.txnRepo.WithTx(tx)
		locked, err := repo.GetByTransactionIDForUpdate(scope, transactionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrTransactionNotFound
		}
		txn = locked
		return s.transition(repo, scope, txn, constants.TransactionStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	logger.Tenant(scope.TenantID()).Infow("ledger_transaction_cancelled", "transaction_id", txn.TransactionID)
	account, err := s.accountRepo.GetByID(scope, txn.PaymentAccountID)
	if err != nil {
		logger.Tenant(scope.TenantID()).Warnw("ledger_cancel_account_load_failed", "error", err)
	}
	s.notify(ctx, account, txn, constants.WebhookEventTransactionCancelled)
	txn.PaymentAccount = account
	return txn, nil
}

// transition 校验并落库一次状态迁移，条件更新保证并发下不会越过状态机
func (s *LedgerService) transition(repo repository.TransactionRepository, scope tenancy.Scope, txn *models.Transaction, to string) error {
	from := txn.Status
	if !CanTransition(from, to) {
		return ErrTransactionStatusInvalid
	}
	txn.Status = to
	if err := repo.UpdateState(scope, txn, from); err != nil {
		txn.Status = from
		if errors.Is(err, repository.ErrStaleRow) {
			return ErrTransactionStatusInvalid
		}
		return err
	}
	return nil
}

func (s *LedgerService) notify(ctx context.Context, account *models.PaymentAccount, txn *models.Transaction, event string) {
	if s.notifier == nil || account == nil || txn == nil || strings.TrimSpace(account.WebhookURL) == "" {
		return
	}
	if err := s.notifier.NotifyTransaction(ctx, txn.TenantID, txn.TransactionID, event); err != nil {
		logger.Tenant(txn.TenantID).Warnw("transaction_webhook_enqueue_failed",
			"transaction_id", txn.TransactionID,
			"event", event,
			"error", err,
		)
	}
}

// calculateFee 手续费 = 金额 × 费率 / 100 + 固定费用，保留两位
func calculateFee(amount models.Money, settings *models.TenantSettings) models.Money {
	pct := models.MustMoney(constants.DefaultTransactionFeePercent).Decimal
	fixed := models.MustMoney(constants.DefaultFixedTransactionFee).Decimal
	if settings != nil {
		pct = settings.TransactionFeePercentage.Decimal
		fixed = settings.FixedTransactionFee.Decimal
	}
	fee := amount.Decimal.Mul(pct).Div(decimal.NewFromInt(100)).Add(fixed).Round(2)
	return models.NewMoneyFromDecimal(fee)
}

func isExpectedLedgerError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, tenancy.ErrIsolationViolation)
}
