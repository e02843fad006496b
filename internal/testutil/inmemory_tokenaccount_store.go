package testutil

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/domain/tokenaccount"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// InMemoryTokenAccountStore implements tokenaccount.Repository
type InMemoryTokenAccountStore struct {
	*InMemoryStore[*tokenaccount.TokenAccount]
}

func NewInMemoryTokenAccountStore() *InMemoryTokenAccountStore {
	return &InMemoryTokenAccountStore{
		InMemoryStore: NewInMemoryStore[*tokenaccount.TokenAccount](),
	}
}

func copyTokenAccount(account *tokenaccount.TokenAccount) *tokenaccount.TokenAccount {
	if account == nil {
		return nil
	}

	return &tokenaccount.TokenAccount{
		Address:       account.Address,
		Balance:       account.Balance,
		EnvironmentID: account.EnvironmentID,
		BaseModel: types.BaseModel{
			TenantID:  account.TenantID,
			Status:    account.Status,
			CreatedAt: account.CreatedAt,
			UpdatedAt: account.UpdatedAt,
			CreatedBy: account.CreatedBy,
			UpdatedBy: account.UpdatedBy,
		},
	}
}

func (s *InMemoryTokenAccountStore) Get(ctx context.Context, address string) (*tokenaccount.TokenAccount, error) {
	account, err := s.InMemoryStore.Get(ctx, address)
	if err != nil {
		return nil, ierr.NewError("token account not found").
			WithHint("Token account not found").
			WithReportableDetails(map[string]interface{}{
				"address": address,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyTokenAccount(account), nil
}

func (s *InMemoryTokenAccountStore) GetOrCreate(ctx context.Context, address string) (*tokenaccount.TokenAccount, error) {
	if account, err := s.InMemoryStore.Get(ctx, address); err == nil {
		return copyTokenAccount(account), nil
	}

	account := &tokenaccount.TokenAccount{
		Address:       address,
		Balance:       decimal.Zero,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := s.InMemoryStore.Create(ctx, address, copyTokenAccount(account)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create token account").
			Mark(ierr.ErrDatabase)
	}
	return account, nil
}

func (s *InMemoryTokenAccountStore) Update(ctx context.Context, account *tokenaccount.TokenAccount) (*tokenaccount.TokenAccount, error) {
	if account == nil {
		return nil, ierr.NewError("token account cannot be nil").
			WithHint("Token account cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if err := s.InMemoryStore.Update(ctx, account.Address, copyTokenAccount(account)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token account not found").
			WithReportableDetails(map[string]interface{}{
				"address": account.Address,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyTokenAccount(account), nil
}

func (s *InMemoryTokenAccountStore) Clear() {
	s.InMemoryStore.Clear()
}
