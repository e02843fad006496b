package custody

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/domain/tokenaccount"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
)

// ledgerCustody implements Adapter over the token account store. Both legs of
// a transfer run inside the caller's transaction, so a failed credit rolls
// back the debit.
type ledgerCustody struct {
	accounts tokenaccount.Repository
	log      *logger.Logger
}

func NewLedgerCustody(accounts tokenaccount.Repository, log *logger.Logger) Adapter {
	return &ledgerCustody{
		accounts: accounts,
		log:      log,
	}
}

func (c *ledgerCustody) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("transfer amount must be positive").
			WithHint("Amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if from == to {
		return ierr.NewError("transfer source and destination are the same account").
			WithHint("Source and destination must differ").
			Mark(ierr.ErrValidation)
	}

	source, err := c.accounts.Get(ctx, from)
	if err != nil {
		return err
	}

	destination, err := c.accounts.GetOrCreate(ctx, to)
	if err != nil {
		return err
	}

	if err := source.Debit(amount); err != nil {
		return err
	}
	if err := destination.Credit(amount); err != nil {
		return err
	}

	if _, err := c.accounts.Update(ctx, source); err != nil {
		return err
	}
	if _, err := c.accounts.Update(ctx, destination); err != nil {
		return err
	}

	c.log.Debugw("custody transfer settled",
		"from", from,
		"to", to,
		"amount", amount.String(),
	)

	return nil
}
