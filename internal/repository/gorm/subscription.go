package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormdb "gorm.io/gorm"

	"github.com/subledger/subledger/internal/cache"
	domainSubscription "github.com/subledger/subledger/internal/domain/subscription"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/postgres"
	"github.com/subledger/subledger/internal/types"
)

type subscriptionRepository struct {
	client postgres.IClient
	log    *logger.Logger
	cache  cache.Cache
}

func NewSubscriptionRepository(client postgres.IClient, log *logger.Logger, cache cache.Cache) domainSubscription.Repository {
	return &subscriptionRepository{
		client: client,
		log:    log,
		cache:  cache,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domainSubscription.Subscription) (*domainSubscription.Subscription, error) {
	r.log.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"tenant_id", sub.TenantID,
	)

	span := StartRepositorySpan(ctx, "subscription", "create", map[string]interface{}{
		"subscription_id": sub.ID,
		"owner_id":        sub.OwnerID,
	})
	defer FinishSpan(span)

	if sub.EnvironmentID == "" {
		sub.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := r.client.DB(ctx).Create(sub).Error; err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrDuplicatedKey) {
			return nil, ierr.WithError(err).
				WithHint("A subscription with this ID already exists").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return sub, nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSubscription.Subscription, error) {
	span := StartRepositorySpan(ctx, "subscription", "get", map[string]interface{}{
		"subscription_id": id,
	})
	defer FinishSpan(span)

	if cached := r.GetCache(ctx, id); cached != nil {
		SetSpanSuccess(span)
		return cached, nil
	}

	var sub domainSubscription.Subscription
	err := r.client.DB(ctx).
		Where("id = ? AND tenant_id = ? AND environment_id = ?", id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&sub).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]any{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	r.SetCache(ctx, &sub)
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domainSubscription.Subscription) (*domainSubscription.Subscription, error) {
	r.log.Debugw("updating subscription",
		"subscription_id", sub.ID,
		"subscription_status", sub.SubscriptionStatus,
	)

	span := StartRepositorySpan(ctx, "subscription", "update", map[string]interface{}{
		"subscription_id": sub.ID,
	})
	defer FinishSpan(span)

	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetCallerID(ctx)

	result := r.client.DB(ctx).
		Model(&domainSubscription.Subscription{}).
		Where("id = ? AND tenant_id = ? AND environment_id = ?", sub.ID, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Select("subscription_status", "last_paid_at", "escrow_balance", "fee_destination", "metadata", "updated_at", "updated_by").
		Updates(sub)
	if result.Error != nil {
		SetSpanError(span, result.Error)
		return nil, ierr.WithError(result.Error).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		err := ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrNotFound)
		SetSpanError(span, err)
		return nil, err
	}

	SetSpanSuccess(span)
	r.DeleteCache(ctx, sub.ID)
	return sub, nil
}

func (r *subscriptionRepository) GetNonCancelledByOwner(ctx context.Context, ownerID string) (*domainSubscription.Subscription, error) {
	span := StartRepositorySpan(ctx, "subscription", "get_non_cancelled_by_owner", map[string]interface{}{
		"owner_id": ownerID,
	})
	defer FinishSpan(span)

	var sub domainSubscription.Subscription
	err := r.client.DB(ctx).
		Where("owner_id = ? AND subscription_status <> ? AND tenant_id = ? AND environment_id = ?",
			ownerID, types.SubscriptionStatusCancelled, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		First(&sub).Error
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewError("no active subscription for owner").
				WithHint("Owner has no active or paused subscription").
				WithReportableDetails(map[string]any{
					"owner_id": ownerID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up subscription by owner").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return &sub, nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*domainSubscription.Subscription, error) {
	span := StartRepositorySpan(ctx, "subscription", "list_active", nil)
	defer FinishSpan(span)

	var subs []*domainSubscription.Subscription
	err := r.client.DB(ctx).
		Where("subscription_status = ? AND tenant_id = ? AND environment_id = ?",
			types.SubscriptionStatusActive, types.GetTenantID(ctx), types.GetEnvironmentID(ctx)).
		Find(&subs).Error
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list active subscriptions").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return subs, nil
}

func (r *subscriptionRepository) cacheKey(ctx context.Context, id string) string {
	return fmt.Sprintf("subscription:%s:%s:%s", types.GetTenantID(ctx), types.GetEnvironmentID(ctx), id)
}

func (r *subscriptionRepository) GetCache(ctx context.Context, id string) *domainSubscription.Subscription {
	span := cache.StartCacheSpan(ctx, "subscription", "get", map[string]interface{}{
		"subscription_id": id,
	})
	defer cache.FinishSpan(span)

	if value, found := r.cache.Get(ctx, r.cacheKey(ctx, id)); found {
		if sub, ok := cache.UnmarshalCacheValue[domainSubscription.Subscription](value); ok {
			return sub
		}
	}
	return nil
}

func (r *subscriptionRepository) SetCache(ctx context.Context, sub *domainSubscription.Subscription) {
	span := cache.StartCacheSpan(ctx, "subscription", "set", map[string]interface{}{
		"subscription_id": sub.ID,
	})
	defer cache.FinishSpan(span)

	r.cache.Set(ctx, r.cacheKey(ctx, sub.ID), sub, cache.ExpiryDefaultInMemory)
}

func (r *subscriptionRepository) DeleteCache(ctx context.Context, id string) {
	span := cache.StartCacheSpan(ctx, "subscription", "delete", map[string]interface{}{
		"subscription_id": id,
	})
	defer cache.FinishSpan(span)

	r.cache.Delete(ctx, r.cacheKey(ctx, id))
}
