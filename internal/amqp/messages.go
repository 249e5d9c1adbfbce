package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event actions carried on the transaction stream.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a transaction changed.
// It carries identifiers only; consumers fetch the full row from the database
// so a stale queue never replays outdated amounts.
type TransactionEvent struct {
	Action        string    `json:"action"`
	TransactionID int64     `json:"transactionId"`
	AccountID     int64     `json:"accountId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewTransactionEvent(action string, transactionID, accountID int64) *TransactionEvent {
	return &TransactionEvent{
		Action:        action,
		TransactionID: transactionID,
		AccountID:     accountID,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown event action %q", e.Action)
	}
	return &e, nil
}
