package testutil

import (
	"context"

	"gorm.io/gorm"

	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

// MockPostgresClient satisfies postgres.IClient for service tests. The
// in-memory stores have no transaction support, so WithTx runs the body
// directly and the advisory locks are no-ops.
type MockPostgresClient struct{}

func NewMockPostgresClient() postgres.IClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (c *MockPostgresClient) LockKey(ctx context.Context, req types.LockRequest) error {
	return nil
}

func (c *MockPostgresClient) TryLockKey(ctx context.Context, key string) (bool, error) {
	return true, nil
}
