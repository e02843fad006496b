package tokenaccount

import "context"

// Repository is the persistence contract for token accounts.
type Repository interface {
	Get(ctx context.Context, address string) (*TokenAccount, error)
	// GetOrCreate returns the account, creating a zero-balance one when it
	// does not exist yet.
	GetOrCreate(ctx context.Context, address string) (*TokenAccount, error)
	Update(ctx context.Context, account *TokenAccount) (*TokenAccount, error)
}
