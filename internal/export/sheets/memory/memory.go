// Package memory is an in-process ledger used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "fintrack/internal/export/sheets"
)

type Ledger struct {
	mu      sync.Mutex
	entries []ports.LedgerEntry
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendEntry(_ context.Context, e ports.LedgerEntry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []ports.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.LedgerEntry(nil), l.entries...)
}
