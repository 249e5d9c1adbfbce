// Package services orchestrates store writes with event publication. The
// store is the source of truth; event publishing is best effort and a broker
// outage never fails a request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService writes transactions to the store and notifies consumers.
type TransactionService struct {
	store     storage.TransactionStore
	publisher EventPublisher
}

// NewTransactionService wires the store with an optional publisher. A nil
// publisher disables eventing; writes behave identically.
func NewTransactionService(store storage.TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.ActionCreated, created.ID, created.AccountID)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, upd core.TransactionUpdate) (core.Transaction, error) {
	updated, err := s.store.UpdateTransaction(ctx, id, upd)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.ActionUpdated, updated.ID, updated.AccountID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	// Fetched before the delete so the event still knows the account.
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.ActionDeleted, id, existing.AccountID)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, action string, transactionID, accountID int64) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewTransactionEvent(action, transactionID, accountID)
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		// The row is already committed; consumers catch up on reconnect.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "transaction_id", transactionID, "error", err)
	}
}

// Close releases the publisher connection if one was attached.
func (s *TransactionService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
