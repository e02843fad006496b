package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// Subscription is one billing record per subscribing principal. Funds are
// escrowed in a derived token account and settled each billing cycle.
type Subscription struct {
	ID string `json:"id" gorm:"column:id;primaryKey"`

	// OwnerID is the paying principal. Immutable after creation.
	OwnerID string `json:"owner_id" gorm:"column:owner_id;index"`

	// FeeDestination receives settled payments.
	FeeDestination string `json:"fee_destination" gorm:"column:fee_destination"`

	// EscrowAccountID is the token account holding this subscription's
	// escrowed stable funds.
	EscrowAccountID string `json:"escrow_account_id" gorm:"column:escrow_account_id"`

	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" gorm:"column:subscription_status;index"`

	// PeriodSeconds is the billing interval, fixed at creation.
	PeriodSeconds int64 `json:"period_seconds" gorm:"column:period_seconds"`

	// NativeFeeAmount is the per-cycle fee denominated in native smallest
	// units; it is converted through the oracle rate at payment time.
	NativeFeeAmount decimal.Decimal `json:"native_fee_amount" gorm:"column:native_fee_amount;type:numeric"`

	// LastPaidAt is the unix timestamp of the last successful settlement,
	// 0 until the first payment. Monotonically non-decreasing.
	LastPaidAt int64 `json:"last_paid_at" gorm:"column:last_paid_at"`

	// EscrowBalance is the stable smallest-unit balance currently held.
	// Never negative.
	EscrowBalance decimal.Decimal `json:"escrow_balance" gorm:"column:escrow_balance;type:numeric"`

	EnvironmentID string         `json:"environment_id" gorm:"column:environment_id;index"`
	Metadata      types.Metadata `json:"metadata,omitempty" gorm:"column:metadata;serializer:json"`
	types.BaseModel
}

func (Subscription) TableName() string {
	return string(types.TableNameSubscriptions)
}

// EnsureOwner verifies that caller is the subscription owner.
func (s *Subscription) EnsureOwner(caller string) error {
	if s.OwnerID != caller {
		return ierr.NewError("caller is not the subscription owner").
			WithHint("Only the subscription owner can perform this operation").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// IsDue reports whether a payment is eligible at the given time. The first
// payment (LastPaidAt == 0) is due immediately.
func (s *Subscription) IsDue(now time.Time) bool {
	if s.LastPaidAt == 0 {
		return true
	}
	return now.Unix() >= s.LastPaidAt+s.PeriodSeconds
}

// NextDueAt returns the unix timestamp at which the next payment becomes
// eligible.
func (s *Subscription) NextDueAt() int64 {
	if s.LastPaidAt == 0 {
		return 0
	}
	return s.LastPaidAt + s.PeriodSeconds
}

// TransitionTo moves the subscription along a legal status edge.
func (s *Subscription) TransitionTo(target types.SubscriptionStatus) error {
	if !s.SubscriptionStatus.CanTransitionTo(target) {
		return ierr.NewErrorf("cannot transition subscription from %s to %s", s.SubscriptionStatus, target).
			WithHint("The requested status change is not allowed").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"from":            s.SubscriptionStatus,
				"to":              target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	s.SubscriptionStatus = target
	return nil
}

func (s *Subscription) Validate() error {
	if s.OwnerID == "" {
		return ierr.NewError("owner_id is required").
			WithHint("Subscription owner is required").
			Mark(ierr.ErrValidation)
	}
	if s.FeeDestination == "" {
		return ierr.NewError("fee_destination is required").
			WithHint("Fee destination is required").
			Mark(ierr.ErrValidation)
	}
	if s.PeriodSeconds <= 0 {
		return ierr.NewError("period_seconds must be positive").
			WithHint("Billing period must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if s.NativeFeeAmount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("native_fee_amount must be positive").
			WithHint("Per-cycle fee must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if s.EscrowBalance.IsNegative() {
		return ierr.NewError("escrow_balance cannot be negative").
			WithHint("Escrow balance cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if !s.SubscriptionStatus.Validate() {
		return ierr.NewErrorf("invalid subscription status: %s", s.SubscriptionStatus).
			WithHint("Subscription status is invalid").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// EscrowAccountID derives the token account address owned by a subscription.
// The derivation is deterministic so the account can be recovered from the
// subscription ID alone.
func EscrowAccountID(subscriptionID string) string {
	return "escrow_" + subscriptionID
}
