package custody

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/testutil"
)

func setupLedger(t *testing.T) (Adapter, *testutil.InMemoryTokenAccountStore, context.Context) {
	t.Helper()
	accounts := testutil.NewInMemoryTokenAccountStore()
	return NewLedgerCustody(accounts, logger.GetLogger()), accounts, context.Background()
}

func fund(t *testing.T, ctx context.Context, accounts *testutil.InMemoryTokenAccountStore, address string, amount int64) {
	t.Helper()
	account, err := accounts.GetOrCreate(ctx, address)
	require.NoError(t, err)
	account.Balance = decimal.NewFromInt(amount)
	_, err = accounts.Update(ctx, account)
	require.NoError(t, err)
}

func balance(t *testing.T, ctx context.Context, accounts *testutil.InMemoryTokenAccountStore, address string) string {
	t.Helper()
	account, err := accounts.Get(ctx, address)
	require.NoError(t, err)
	return account.Balance.String()
}

func TestTransfer(t *testing.T) {
	ledger, accounts, ctx := setupLedger(t)
	fund(t, ctx, accounts, "alice", 1000)

	err := ledger.Transfer(ctx, "alice", "bob", decimal.NewFromInt(400))
	assert.NoError(t, err)
	assert.Equal(t, "600", balance(t, ctx, accounts, "alice"))
	assert.Equal(t, "400", balance(t, ctx, accounts, "bob"))
}

func TestTransferInsufficientFunds(t *testing.T) {
	ledger, accounts, ctx := setupLedger(t)
	fund(t, ctx, accounts, "alice", 100)

	err := ledger.Transfer(ctx, "alice", "bob", decimal.NewFromInt(400))
	assert.Error(t, err)
	assert.True(t, ierr.IsInsufficientFunds(err))
	assert.Equal(t, "100", balance(t, ctx, accounts, "alice"))
}

func TestTransferValidation(t *testing.T) {
	ledger, accounts, ctx := setupLedger(t)
	fund(t, ctx, accounts, "alice", 1000)

	err := ledger.Transfer(ctx, "alice", "bob", decimal.Zero)
	assert.True(t, ierr.IsValidation(err))

	err = ledger.Transfer(ctx, "alice", "alice", decimal.NewFromInt(10))
	assert.True(t, ierr.IsValidation(err))
}

func TestTransferUnknownSource(t *testing.T) {
	ledger, _, ctx := setupLedger(t)

	err := ledger.Transfer(ctx, "ghost", "bob", decimal.NewFromInt(10))
	assert.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}
