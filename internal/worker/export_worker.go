// Package worker turns transaction events into ledger exports.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export/sheets"
	"fintrack/internal/storage"
)

// ExportWorker consumes transaction events and appends them to the ledger.
// It fetches the current row from the store so replayed events never export
// stale amounts.
type ExportWorker struct {
	store  storage.TransactionStore
	ledger sheets.LedgerWriter
}

func NewExportWorker(store storage.TransactionStore, ledger sheets.LedgerWriter) *ExportWorker {
	return &ExportWorker{store: store, ledger: ledger}
}

// HandleEvent processes one transaction event.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"action", event.Action,
		"transaction_id", event.TransactionID)

	entry := sheets.LedgerEntry{
		TransactionID: event.TransactionID,
		Action:        event.Action,
	}

	if event.Action == amqp.ActionDeleted {
		// Row is gone; export a tombstone with the event date.
		entry.Date = core.NewDate(event.OccurredAt.Year(), int(event.OccurredAt.Month()), event.OccurredAt.Day())
		entry.Description = fmt.Sprintf("transaction %d deleted", event.TransactionID)
	} else {
		t, err := w.store.GetTransaction(ctx, event.TransactionID)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between publish and consume; nothing left to export.
			slog.WarnContext(ctx, "Transaction vanished before export",
				"transaction_id", event.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		entry.Date = t.TransactionDate
		entry.Description = t.Description
		entry.Amount = t.Amount
		entry.Currency = t.Currency
	}

	ref, err := w.ledger.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"action", event.Action,
		"transaction_id", event.TransactionID,
		"row", ref)
	return nil
}
