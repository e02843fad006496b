package types

import "github.com/shopspring/decimal"

// Amount conventions: stable-asset amounts are integers in the smallest unit
// with 6 decimals; native-asset amounts are integers in the smallest unit
// with 9 decimals. Oracle rates are decimals denominated in whole stable
// units per whole native unit.
const (
	StableDecimals = 6
	NativeDecimals = 9
)

var (
	stableUnit = decimal.New(1, StableDecimals)
	nativeUnit = decimal.New(1, NativeDecimals)
)

// NativeToStable converts a native-asset amount (smallest units) to a
// stable-asset amount (smallest units) at the given rate, rounding down so a
// subscriber is never over-charged.
func NativeToStable(nativeAmount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return nativeAmount.Div(nativeUnit).Mul(rate).Mul(stableUnit).Floor()
}

// FormatStable renders a smallest-unit stable amount as a whole-unit decimal
// string for display, e.g. 1500000 -> "1.5".
func FormatStable(amount decimal.Decimal) string {
	return amount.Div(stableUnit).String()
}
