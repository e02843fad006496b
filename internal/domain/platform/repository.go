package platform

import "context"

// Repository is the persistence contract for the platform config singleton.
type Repository interface {
	// Get returns the config for the current tenant, or an
	// ErrNotFound-marked error before bootstrap.
	Get(ctx context.Context) (*Config, error)
	Create(ctx context.Context, cfg *Config) (*Config, error)
	Update(ctx context.Context, cfg *Config) (*Config, error)
}
