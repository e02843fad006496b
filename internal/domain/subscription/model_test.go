package subscription

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

func validSubscription() *Subscription {
	return &Subscription{
		ID:                 "subs_test",
		OwnerID:            "user_1",
		FeeDestination:     "merchant_wallet",
		EscrowAccountID:    EscrowAccountID("subs_test"),
		SubscriptionStatus: types.SubscriptionStatusActive,
		PeriodSeconds:      2592000,
		NativeFeeAmount:    decimal.NewFromInt(20000000),
		EscrowBalance:      decimal.Zero,
	}
}

func TestIsDue(t *testing.T) {
	now := time.Now().UTC()
	sub := validSubscription()

	// First payment is due immediately.
	assert.True(t, sub.IsDue(now))

	sub.LastPaidAt = now.Unix()
	assert.False(t, sub.IsDue(now))
	assert.False(t, sub.IsDue(now.Add(time.Duration(sub.PeriodSeconds-1)*time.Second)))
	assert.True(t, sub.IsDue(now.Add(time.Duration(sub.PeriodSeconds)*time.Second)))
}

func TestNextDueAt(t *testing.T) {
	sub := validSubscription()
	assert.Equal(t, int64(0), sub.NextDueAt())

	sub.LastPaidAt = 1000
	assert.Equal(t, int64(1000+2592000), sub.NextDueAt())
}

func TestTransitionTo(t *testing.T) {
	sub := validSubscription()

	assert.NoError(t, sub.TransitionTo(types.SubscriptionStatusPaused))
	assert.Equal(t, types.SubscriptionStatusPaused, sub.SubscriptionStatus)

	assert.NoError(t, sub.TransitionTo(types.SubscriptionStatusActive))
	assert.NoError(t, sub.TransitionTo(types.SubscriptionStatusCancelled))

	// Cancelled is terminal.
	err := sub.TransitionTo(types.SubscriptionStatusActive)
	assert.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.Equal(t, types.SubscriptionStatusCancelled, sub.SubscriptionStatus)
}

func TestEnsureOwner(t *testing.T) {
	sub := validSubscription()

	assert.NoError(t, sub.EnsureOwner("user_1"))

	err := sub.EnsureOwner("user_2")
	assert.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validSubscription().Validate())

	sub := validSubscription()
	sub.PeriodSeconds = 0
	assert.True(t, ierr.IsValidation(sub.Validate()))

	sub = validSubscription()
	sub.NativeFeeAmount = decimal.Zero
	assert.True(t, ierr.IsValidation(sub.Validate()))

	sub = validSubscription()
	sub.EscrowBalance = decimal.NewFromInt(-1)
	assert.True(t, ierr.IsValidation(sub.Validate()))
}
