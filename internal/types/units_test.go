package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNativeToStable(t *testing.T) {
	testCases := []struct {
		name     string
		native   string
		rate     string
		expected string
	}{
		{"exact conversion", "20000000", "50.0", "1000000"},
		{"floors fractional result", "1", "50.0", "0"},
		{"floors to nearest unit", "33333333", "50.0", "1666666"},
		{"one whole native", "1000000000", "50.0", "50000000"},
		{"fractional rate", "1000000000", "49.123456", "49123456"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			native := decimal.RequireFromString(tc.native)
			rate := decimal.RequireFromString(tc.rate)
			assert.Equal(t, tc.expected, NativeToStable(native, rate).String())
		})
	}
}

func TestFormatStable(t *testing.T) {
	assert.Equal(t, "1", FormatStable(decimal.NewFromInt(1000000)))
	assert.Equal(t, "1.5", FormatStable(decimal.NewFromInt(1500000)))
	assert.Equal(t, "0.000001", FormatStable(decimal.NewFromInt(1)))
}
