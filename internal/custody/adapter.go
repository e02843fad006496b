package custody

import (
	"context"

	"github.com/shopspring/decimal"
)

// Adapter is the external custody contract the ledger drives. Transfer is
// atomic: either the full amount moves or no balance changes. The ledger
// never mutates its own records before a successful transfer confirmation.
type Adapter interface {
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
}
