package oracle

import "context"

// Repository is the persistence contract for price oracle records.
type Repository interface {
	// Get returns the oracle record for the asset pair, or an
	// ErrNotFound-marked error when no price has been published yet.
	Get(ctx context.Context, assetPair string) (*PriceOracle, error)
	// Upsert creates the record on first write and replaces the rate in
	// place afterwards.
	Upsert(ctx context.Context, record *PriceOracle) (*PriceOracle, error)
}
