package tokenaccount

import (
	"github.com/shopspring/decimal"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// TokenAccount is a stable-asset balance held under custody for one address.
// Subscription escrows, fee destinations and the platform fee wallet are all
// token accounts.
type TokenAccount struct {
	// Address is the account identity; for subscription escrows it is the
	// derived escrow address.
	Address string `json:"address" gorm:"column:address;primaryKey"`

	// Balance is in stable smallest units. Never negative.
	Balance decimal.Decimal `json:"balance" gorm:"column:balance;type:numeric"`

	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (TokenAccount) TableName() string {
	return string(types.TableNameTokenAccounts)
}

// Debit removes amount from the balance, failing without mutation when the
// balance does not cover it.
func (a *TokenAccount) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("debit amount must be positive").
			WithHint("Amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if a.Balance.LessThan(amount) {
		return ierr.NewError("token account balance is insufficient").
			WithHint("Account does not hold enough funds").
			WithReportableDetails(map[string]any{
				"address": a.Address,
				"balance": a.Balance.String(),
				"amount":  amount.String(),
			}).
			Mark(ierr.ErrInsufficientFunds)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *TokenAccount) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("credit amount must be positive").
			WithHint("Amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}
