package testutil

import (
	"context"

	"github.com/subledger/subledger/internal/domain/oracle"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// InMemoryOracleStore implements oracle.Repository
type InMemoryOracleStore struct {
	*InMemoryStore[*oracle.PriceOracle]
}

func NewInMemoryOracleStore() *InMemoryOracleStore {
	return &InMemoryOracleStore{
		InMemoryStore: NewInMemoryStore[*oracle.PriceOracle](),
	}
}

// oracleKey scopes records by environment so one environment's rate can
// never shadow another's.
func oracleKey(environmentID, assetPair string) string {
	return environmentID + ":" + assetPair
}

func copyPriceOracle(record *oracle.PriceOracle) *oracle.PriceOracle {
	if record == nil {
		return nil
	}

	return &oracle.PriceOracle{
		AssetPair:     record.AssetPair,
		Rate:          record.Rate,
		UpdatedAtUnix: record.UpdatedAtUnix,
		EnvironmentID: record.EnvironmentID,
		BaseModel: types.BaseModel{
			TenantID:  record.TenantID,
			Status:    record.Status,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
			CreatedBy: record.CreatedBy,
			UpdatedBy: record.UpdatedBy,
		},
	}
}

func (s *InMemoryOracleStore) Get(ctx context.Context, assetPair string) (*oracle.PriceOracle, error) {
	record, err := s.InMemoryStore.Get(ctx, oracleKey(types.GetEnvironmentID(ctx), assetPair))
	if err != nil {
		return nil, ierr.NewError("price oracle not found").
			WithHint("No price has been published for this asset pair").
			WithReportableDetails(map[string]interface{}{
				"asset_pair": assetPair,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceOracle(record), nil
}

func (s *InMemoryOracleStore) Upsert(ctx context.Context, record *oracle.PriceOracle) (*oracle.PriceOracle, error) {
	if record == nil {
		return nil, ierr.NewError("price oracle cannot be nil").
			WithHint("Price oracle cannot be nil").
			Mark(ierr.ErrValidation)
	}

	if record.EnvironmentID == "" {
		record.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	key := oracleKey(record.EnvironmentID, record.AssetPair)
	if err := s.InMemoryStore.Update(ctx, key, copyPriceOracle(record)); err != nil {
		if err := s.InMemoryStore.Create(ctx, key, copyPriceOracle(record)); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to store price oracle").
				Mark(ierr.ErrDatabase)
		}
	}
	return copyPriceOracle(record), nil
}

func (s *InMemoryOracleStore) Clear() {
	s.InMemoryStore.Clear()
}
