package publisher

import "github.com/shopspring/decimal"

const (
	TopicPaymentProcessed      = "payment.processed"
	TopicPaymentFailed         = "payment.failed"
	TopicSubscriptionCancelled = "subscription.cancelled"
)

// PaymentProcessedEvent is emitted after a settlement commits.
type PaymentProcessedEvent struct {
	ReceiptID       string          `json:"receipt_id"`
	SubscriptionID  string          `json:"subscription_id"`
	OwnerID         string          `json:"owner_id"`
	AmountDue       decimal.Decimal `json:"amount_due"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	Rate            decimal.Decimal `json:"rate"`
	RemainingEscrow decimal.Decimal `json:"remaining_escrow"`
	// NextAmountDue lets the consumer warn about a low escrow without
	// re-reading the oracle.
	NextAmountDue decimal.Decimal `json:"next_amount_due"`
	Timestamp     int64           `json:"timestamp"`
}

// PaymentFailedEvent is emitted when a custody transfer is rejected; the
// ledger is left unchanged.
type PaymentFailedEvent struct {
	SubscriptionID string `json:"subscription_id"`
	OwnerID        string `json:"owner_id"`
	Reason         string `json:"reason"`
	Timestamp      int64  `json:"timestamp"`
}

// SubscriptionCancelledEvent is emitted after a cancellation commits.
type SubscriptionCancelledEvent struct {
	SubscriptionID string          `json:"subscription_id"`
	OwnerID        string          `json:"owner_id"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	Timestamp      int64           `json:"timestamp"`
}
