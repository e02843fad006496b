package oracle

import (
	"github.com/shopspring/decimal"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// PriceOracle holds the current exchange rate between the native asset and
// the stable billing unit for one asset pair. There is exactly one record
// per pair and environment; it is created once and only ever mutated in
// place.
type PriceOracle struct {
	// AssetPair identifies the record within an environment, e.g.
	// "native/stable".
	AssetPair string `json:"asset_pair" gorm:"column:asset_pair;primaryKey"`

	// Rate is stable units per one whole native unit. Always positive.
	Rate decimal.Decimal `json:"rate" gorm:"column:rate;type:numeric"`

	// UpdatedAtUnix is the unix timestamp of the last update. The identity
	// of the last authorized setter lives in the audit column UpdatedBy.
	UpdatedAtUnix int64 `json:"updated_at_unix" gorm:"column:updated_at_unix"`

	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;primaryKey"`
	types.BaseModel
}

func (PriceOracle) TableName() string {
	return string(types.TableNamePriceOracles)
}

// ValidateRate rejects non-positive rates; a rejected update leaves the
// stored record unchanged.
func ValidateRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("rate must be positive").
			WithHint("Oracle rate must be greater than zero").
			WithReportableDetails(map[string]any{
				"rate": rate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
