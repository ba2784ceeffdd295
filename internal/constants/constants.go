package constants

// 交易状态常量
const (
	TransactionStatusPending           = "pending"
	TransactionStatusProcessing        = "processing"
	TransactionStatusCompleted         = "completed"
	TransactionStatusFailed            = "failed"
	TransactionStatusCancelled         = "cancelled"
	TransactionStatusPartiallyRefunded = "partially_refunded"
	TransactionStatusRefunded          = "refunded"
)

// 交易类型常量
const (
	TransactionTypePayment    = "payment"
	TransactionTypeRefund     = "refund"
	TransactionTypeChargeback = "chargeback"
)

// 支付提供方常量
const (
	PaymentProviderStripe   = "stripe"
	PaymentProviderPayPal   = "paypal"
	PaymentProviderSquare   = "square"
	PaymentProviderRazorpay = "razorpay"
)

// 租户操作员角色常量
const (
	OperatorRoleAdmin = "tenant_admin"
	OperatorRoleUser  = "tenant_user"
)

// 租户设置默认值
const (
	DefaultCurrency              = "USD"
	DefaultTransactionFeePercent = "2.90"
	DefaultFixedTransactionFee   = "0.30"
	DefaultMaxRefundDays         = 30
)

// Webhook 事件常量
const (
	WebhookEventPaymentCompleted     = "payment.completed"
	WebhookEventPaymentFailed        = "payment.failed"
	WebhookEventRefundCompleted      = "refund.completed"
	WebhookEventTransactionCancelled = "transaction.cancelled"
)

// 队列相关常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskTransactionWebhook = "transaction:webhook"
)
