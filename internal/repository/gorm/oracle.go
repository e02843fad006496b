package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormdb "gorm.io/gorm"

	"github.com/subledger/subledger/internal/cache"
	domainOracle "github.com/subledger/subledger/internal/domain/oracle"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

type oracleRepository struct {
	client postgres.IClient
	log    *logger.Logger
	cache  cache.Cache
}

func NewOracleRepository(client postgres.IClient, log *logger.Logger, cache cache.Cache) domainOracle.Repository {
	return &oracleRepository{
		client: client,
		log:    log,
		cache:  cache,
	}
}

func (r *oracleRepository) Get(ctx context.Context, assetPair string) (*domainOracle.PriceOracle, error) {
	span := StartRepositorySpan(ctx, "price_oracle", "get", map[string]interface{}{
		"asset_pair": assetPair,
	})
	defer FinishSpan(span)

	if cached := r.GetCache(ctx, assetPair); cached != nil {
		SetSpanSuccess(span)
		return cached, nil
	}

	var record domainOracle.PriceOracle
	err := r.client.DB(ctx).
		Where("asset_pair = ? AND tenant_id = ? AND environment_id = ?", assetPair, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&record).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("price oracle record not found").
				WithHint("No price has been published for this asset pair").
				WithReportableDetails(map[string]any{
					"asset_pair": assetPair,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get price oracle record").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	r.SetCache(ctx, &record)
	return &record, nil
}

func (r *oracleRepository) Upsert(ctx context.Context, record *domainOracle.PriceOracle) (*domainOracle.PriceOracle, error) {
	r.log.Debugw("upserting price oracle record",
		"asset_pair", record.AssetPair,
		"rate", record.Rate.String(),
		"updated_by", record.UpdatedBy,
	)

	span := StartRepositorySpan(ctx, "price_oracle", "upsert", map[string]interface{}{
		"asset_pair": record.AssetPair,
	})
	defer FinishSpan(span)

	if record.EnvironmentID == "" {
		record.EnvironmentID = types.GetEnvironmentID(ctx)
	}
	record.UpdatedAt = time.Now().UTC()

	// Update-then-create instead of ON CONFLICT: a conflict target on the
	// pair alone would match rows across tenants. The caller serializes
	// updates with an advisory lock on the pair.
	result := r.client.DB(ctx).
		Model(&domainOracle.PriceOracle{}).
		Where("asset_pair = ? AND tenant_id = ? AND environment_id = ?", record.AssetPair, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Select("rate", "updated_by", "updated_at_unix", "updated_at").
		Updates(record)
	if result.Error != nil {
		SetSpanError(span, result.Error)
		return nil, ierr.WithError(result.Error).
			WithHint("Failed to store price oracle record").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		if err := r.client.DB(ctx).Create(record).Error; err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to store price oracle record").
				Mark(ierr.ErrDatabase)
		}
	}

	SetSpanSuccess(span)
	r.DeleteCache(ctx, record.AssetPair)
	return record, nil
}

func (r *oracleRepository) cacheKey(ctx context.Context, assetPair string) string {
	return fmt.Sprintf("oracle:%s:%s:%s", types.GetTenantID(ctx), types.GetEnvironmentID(ctx), assetPair)
}

func (r *oracleRepository) GetCache(ctx context.Context, assetPair string) *domainOracle.PriceOracle {
	span := cache.StartCacheSpan(ctx, "price_oracle", "get", map[string]interface{}{
		"asset_pair": assetPair,
	})
	defer cache.FinishSpan(span)

	if value, found := r.cache.Get(ctx, r.cacheKey(ctx, assetPair)); found {
		if record, ok := cache.UnmarshalCacheValue[domainOracle.PriceOracle](value); ok {
			return record
		}
	}
	return nil
}

func (r *oracleRepository) SetCache(ctx context.Context, record *domainOracle.PriceOracle) {
	span := cache.StartCacheSpan(ctx, "price_oracle", "set", map[string]interface{}{
		"asset_pair": record.AssetPair,
	})
	defer cache.FinishSpan(span)

	r.cache.Set(ctx, r.cacheKey(ctx, record.AssetPair), record, cache.ExpiryDefaultInMemory)
}

func (r *oracleRepository) DeleteCache(ctx context.Context, assetPair string) {
	span := cache.StartCacheSpan(ctx, "price_oracle", "delete", map[string]interface{}{
		"asset_pair": assetPair,
	})
	defer cache.FinishSpan(span)

	r.cache.Delete(ctx, r.cacheKey(ctx, assetPair))
}
