package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainPlatform "github.com/subledger/subledger/internal/domain/platform"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

type platformRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewPlatformRepository(client postgres.IClient, log *logger.Logger) domainPlatform.Repository {
	return &platformRepository{
		client: client,
		log:    log,
	}
}

func (r *platformRepository) Get(ctx context.Context) (*domainPlatform.Config, error) {
	span := StartRepositorySpan(ctx, "platform_config", "get", nil)
	defer FinishSpan(span)

	var cfg domainPlatform.Config
	err := r.client.DB(ctx).
		Where("id = ? AND tenant_id = ? AND environment_id = ?", domainPlatform.ConfigID, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&cfg).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("platform config not found").
				WithHint("Platform config has not been initialized").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get platform config").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return &cfg, nil
}

func (r *platformRepository) Create(ctx context.Context, cfg *domainPlatform.Config) (*domainPlatform.Config, error) {
	r.log.Debugw("creating platform config",
		"admin_id", cfg.AdminID,
		"fee_wallet", cfg.FeeWallet,
	)

	span := StartRepositorySpan(ctx, "platform_config", "create", nil)
	defer FinishSpan(span)

	if cfg.EnvironmentID == "" {
		cfg.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := r.client.DB(ctx).Create(cfg).Error; err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrDuplicatedKey) {
			return nil, ierr.WithError(err).
				WithHint("Platform config is already initialized").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create platform config").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return cfg, nil
}

func (r *platformRepository) Update(ctx context.Context, cfg *domainPlatform.Config) (*domainPlatform.Config, error) {
	span := StartRepositorySpan(ctx, "platform_config", "update", nil)
	defer FinishSpan(span)

	cfg.UpdatedAt = time.Now().UTC()
	cfg.UpdatedBy = types.GetCallerID(ctx)

	result := r.client.DB(ctx).
		Model(&domainPlatform.Config{}).
		Where("id = ? AND tenant_id = ? AND environment_id = ?", domainPlatform.ConfigID, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Select("fee_wallet", "updated_at", "updated_by").
		Updates(cfg)
	if result.Error != nil {
		SetSpanError(span, result.Error)
		return nil, ierr.WithError(result.Error).
			WithHint("Failed to update platform config").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		err := ierr.NewError("platform config not found").
			WithHint("Platform config has not been initialized").
			Mark(ierr.ErrNotFound)
		SetSpanError(span, err)
		return nil, err
	}

	SetSpanSuccess(span)
	return cfg, nil
}
