package subscription

import "context"

// Repository is the persistence contract for subscriptions.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) (*Subscription, error)
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) (*Subscription, error)
	// GetNonCancelledByOwner returns the owner's active or paused
	// subscription, or an ErrNotFound-marked error when none exists.
	GetNonCancelledByOwner(ctx context.Context, ownerID string) (*Subscription, error)
	// ListActive returns all active subscriptions for the current tenant.
	ListActive(ctx context.Context) ([]*Subscription, error)
}
