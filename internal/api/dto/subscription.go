package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/domain/subscription"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
	"github.com/subledger/subledger/internal/validator"
)

type CreateSubscriptionRequest struct {
	// FeeDestination receives settled payments.
	FeeDestination string `json:"fee_destination" validate:"required"`
	// PeriodSeconds is the billing interval.
	PeriodSeconds int64 `json:"period_seconds" validate:"required,gt=0"`
	// NativeFeeAmount is the per-cycle fee in native smallest units,
	// as a decimal string.
	NativeFeeAmount string `json:"native_fee_amount" validate:"required"`
	// Email optionally receives receipts and balance alerts.
	Email    string         `json:"email,omitempty" validate:"omitempty,email"`
	Metadata types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(r.NativeFeeAmount)
	if err != nil {
		return ierr.NewError("invalid native fee amount format").
			WithHint("Native fee amount must be a valid decimal number").
			WithReportableDetails(map[string]interface{}{
				"native_fee_amount": r.NativeFeeAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("native fee amount must be positive").
			WithHint("Native fee amount must be greater than zero").
			WithReportableDetails(map[string]interface{}{
				"native_fee_amount": r.NativeFeeAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToSubscription builds the domain record for the authenticated owner.
func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context, ownerID string) *subscription.Subscription {
	id := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION)
	nativeFee, _ := decimal.NewFromString(r.NativeFeeAmount)

	metadata := types.Metadata{}
	for k, v := range r.Metadata {
		metadata[k] = v
	}
	if r.Email != "" {
		metadata["email"] = r.Email
	}

	return &subscription.Subscription{
		ID:                 id,
		OwnerID:            ownerID,
		FeeDestination:     r.FeeDestination,
		EscrowAccountID:    subscription.EscrowAccountID(id),
		SubscriptionStatus: types.SubscriptionStatusActive,
		PeriodSeconds:      r.PeriodSeconds,
		NativeFeeAmount:    nativeFee,
		LastPaidAt:         0,
		EscrowBalance:      decimal.Zero,
		EnvironmentID:      types.GetEnvironmentID(ctx),
		Metadata:           metadata,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

type DepositRequest struct {
	// Amount is in stable smallest units, as a decimal string.
	Amount string `json:"amount" validate:"required"`
}

// Validate parses and checks the deposit amount.
func (r *DepositRequest) Validate() (decimal.Decimal, error) {
	if err := validator.ValidateRequest(r); err != nil {
		return decimal.Zero, err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero, ierr.NewError("invalid amount format").
			WithHint("Amount must be a valid decimal number").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ierr.NewError("amount must be positive").
			WithHint("Deposit amount must be greater than zero").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	return amount, nil
}

type SubscriptionResponse struct {
	*subscription.Subscription
}
