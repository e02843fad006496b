package payment

import (
	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/types"
)

// Receipt records one settled billing cycle. Receipts are append-only; they
// are never updated after the settlement commits.
type Receipt struct {
	ID             string `json:"id" gorm:"column:id;primaryKey"`
	SubscriptionID string `json:"subscription_id" gorm:"column:subscription_id;index"`

	// AmountDue is the total stable smallest-unit amount charged against
	// the escrow for the cycle.
	AmountDue decimal.Decimal `json:"amount_due" gorm:"column:amount_due;type:numeric"`

	// PlatformFee is the portion of AmountDue routed to the platform fee
	// wallet.
	PlatformFee decimal.Decimal `json:"platform_fee" gorm:"column:platform_fee;type:numeric"`

	// Rate is the oracle rate the settlement was priced at.
	Rate decimal.Decimal `json:"rate" gorm:"column:rate;type:numeric"`

	// Timestamp is the unix time of the settlement; it equals the
	// subscription's new last_paid_at.
	Timestamp int64 `json:"timestamp" gorm:"column:timestamp"`

	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (Receipt) TableName() string {
	return string(types.TableNameReceipts)
}
