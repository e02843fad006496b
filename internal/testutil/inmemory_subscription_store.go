package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/subledger/subledger/internal/domain/subscription"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}

	return &subscription.Subscription{
		ID:                 sub.ID,
		OwnerID:            sub.OwnerID,
		FeeDestination:     sub.FeeDestination,
		EscrowAccountID:    sub.EscrowAccountID,
		SubscriptionStatus: sub.SubscriptionStatus,
		PeriodSeconds:      sub.PeriodSeconds,
		NativeFeeAmount:    sub.NativeFeeAmount,
		LastPaidAt:         sub.LastPaidAt,
		EscrowBalance:      sub.EscrowBalance,
		EnvironmentID:      sub.EnvironmentID,
		Metadata:           lo.Assign(types.Metadata{}, sub.Metadata),
		BaseModel: types.BaseModel{
			TenantID:  sub.TenantID,
			Status:    sub.Status,
			CreatedAt: sub.CreatedAt,
			UpdatedAt: sub.UpdatedAt,
			CreatedBy: sub.CreatedBy,
			UpdatedBy: sub.UpdatedBy,
		},
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	if sub == nil {
		return nil, ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if sub.EnvironmentID == "" {
		sub.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	if err := s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("A subscription with this ID already exists").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	if sub == nil {
		return nil, ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetNonCancelledByOwner(ctx context.Context, ownerID string) (*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return sub.OwnerID == ownerID &&
			sub.SubscriptionStatus != types.SubscriptionStatusCancelled &&
			CheckEnvironmentFilter(ctx, sub.EnvironmentID)
	}, nil)
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No non-cancelled subscription exists for this owner").
			WithReportableDetails(map[string]interface{}{
				"owner_id": ownerID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(subs[0]), nil
}

func (s *InMemorySubscriptionStore) ListActive(ctx context.Context) ([]*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return sub.SubscriptionStatus == types.SubscriptionStatusActive &&
			CheckEnvironmentFilter(ctx, sub.EnvironmentID)
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	result := make([]*subscription.Subscription, 0, len(subs))
	for _, sub := range subs {
		result = append(result, copySubscription(sub))
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.InMemoryStore.Clear()
}
