package dto

import (
	"github.com/shopspring/decimal"

	"github.com/subledger/subledger/internal/domain/oracle"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/validator"
)

type SetPriceRequest struct {
	// Rate is stable units per one whole native unit, as a decimal string
	// with up to 6 decimal places.
	Rate string `json:"rate" validate:"required"`
}

// Validate parses and checks the rate.
func (r *SetPriceRequest) Validate() (decimal.Decimal, error) {
	if err := validator.ValidateRequest(r); err != nil {
		return decimal.Zero, err
	}

	rate, err := decimal.NewFromString(r.Rate)
	if err != nil {
		return decimal.Zero, ierr.NewError("invalid rate format").
			WithHint("Rate must be a valid decimal number").
			WithReportableDetails(map[string]interface{}{
				"rate": r.Rate,
			}).
			Mark(ierr.ErrValidation)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ierr.NewError("rate must be positive").
			WithHint("Oracle rate must be greater than zero").
			WithReportableDetails(map[string]interface{}{
				"rate": r.Rate,
			}).
			Mark(ierr.ErrValidation)
	}
	if rate.Exponent() < -6 {
		return decimal.Zero, ierr.NewError("rate precision exceeds 6 decimals").
			WithHint("Rate supports at most 6 decimal places").
			WithReportableDetails(map[string]interface{}{
				"rate": r.Rate,
			}).
			Mark(ierr.ErrValidation)
	}

	return rate, nil
}

type PriceResponse struct {
	*oracle.PriceOracle
}
