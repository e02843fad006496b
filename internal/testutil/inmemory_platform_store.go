package testutil

import (
	"context"

	"github.com/subledger/subledger/internal/domain/platform"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// InMemoryPlatformStore implements platform.Repository
type InMemoryPlatformStore struct {
	*InMemoryStore[*platform.Config]
}

func NewInMemoryPlatformStore() *InMemoryPlatformStore {
	return &InMemoryPlatformStore{
		InMemoryStore: NewInMemoryStore[*platform.Config](),
	}
}

func copyPlatformConfig(cfg *platform.Config) *platform.Config {
	if cfg == nil {
		return nil
	}

	return &platform.Config{
		ID:            cfg.ID,
		AdminID:       cfg.AdminID,
		FeeWallet:     cfg.FeeWallet,
		EnvironmentID: cfg.EnvironmentID,
		BaseModel: types.BaseModel{
			TenantID:  cfg.TenantID,
			Status:    cfg.Status,
			CreatedAt: cfg.CreatedAt,
			UpdatedAt: cfg.UpdatedAt,
			CreatedBy: cfg.CreatedBy,
			UpdatedBy: cfg.UpdatedBy,
		},
	}
}

func (s *InMemoryPlatformStore) Get(ctx context.Context) (*platform.Config, error) {
	cfg, err := s.InMemoryStore.Get(ctx, platform.ConfigID)
	if err != nil {
		return nil, ierr.NewError("platform config not found").
			WithHint("The platform config has not been initialized").
			Mark(ierr.ErrNotFound)
	}
	return copyPlatformConfig(cfg), nil
}

func (s *InMemoryPlatformStore) Create(ctx context.Context, cfg *platform.Config) (*platform.Config, error) {
	if cfg == nil {
		return nil, ierr.NewError("platform config cannot be nil").
			WithHint("Platform config cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if cfg.EnvironmentID == "" {
		cfg.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := s.InMemoryStore.Create(ctx, cfg.ID, copyPlatformConfig(cfg)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The platform config is already initialized").
			Mark(ierr.ErrAlreadyExists)
	}
	return copyPlatformConfig(cfg), nil
}

func (s *InMemoryPlatformStore) Update(ctx context.Context, cfg *platform.Config) (*platform.Config, error) {
	if cfg == nil {
		return nil, ierr.NewError("platform config cannot be nil").
			WithHint("Platform config cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if err := s.InMemoryStore.Update(ctx, cfg.ID, copyPlatformConfig(cfg)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The platform config has not been initialized").
			Mark(ierr.ErrNotFound)
	}
	return copyPlatformConfig(cfg), nil
}

func (s *InMemoryPlatformStore) Clear() {
	s.InMemoryStore.Clear()
}
