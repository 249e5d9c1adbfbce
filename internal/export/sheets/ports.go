// Package sheets defines the outbound ledger-export ports. Adapters live in
// subpackages; the worker only sees these interfaces.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// LedgerEntry is one exported row. Deleted transactions are exported as
// tombstone rows rather than removed, so the sheet stays append-only.
type LedgerEntry struct {
	TransactionID int64
	Action        string
	Date          core.Date
	Description   string
	Amount        decimal.Decimal
	Currency      string
}

// LedgerWriter appends entries to an external ledger.
type LedgerWriter interface {
	AppendEntry(ctx context.Context, e LedgerEntry) (rowRef string, err error)
}
