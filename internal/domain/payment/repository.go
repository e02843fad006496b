package payment

import "context"

// Repository is the persistence contract for payment receipts.
type Repository interface {
	Create(ctx context.Context, receipt *Receipt) (*Receipt, error)
	Get(ctx context.Context, id string) (*Receipt, error)
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*Receipt, error)
}
