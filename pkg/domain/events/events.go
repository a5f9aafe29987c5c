// Package events defines the domain events published on the transaction
// lifecycle. Publication is fire-and-forget from the orchestrator's
// perspective; downstream consumers (notifications, reporting) subscribe
// through the event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the marker interface for all domain events.
type Event interface {
	Type() string
}

// TransactionEvent carries the common payload of lifecycle events.
type TransactionEvent struct {
	EventID       uuid.UUID
	TransactionID uuid.UUID
	Reference     string
	AccountNumber string
	Amount        int64 // smallest currency unit
	Currency      string
	Status        string
	Timestamp     int64
}

func newTransactionEvent(txID uuid.UUID, reference, account string, amount int64, currency, status string) TransactionEvent {
	return TransactionEvent{
		EventID:       uuid.New(),
		TransactionID: txID,
		Reference:     reference,
		AccountNumber: account,
		Amount:        amount,
		Currency:      currency,
		Status:        status,
		Timestamp:     time.Now().Unix(),
	}
}

// TransactionCreated is published when a record enters PENDING.
type TransactionCreated struct{ TransactionEvent }

// Type implements Event.
func (TransactionCreated) Type() string { return "TransactionCreated" }

// TransactionSucceeded is published when a record settles.
type TransactionSucceeded struct{ TransactionEvent }

// Type implements Event.
func (TransactionSucceeded) Type() string { return "TransactionSucceeded" }

// TransactionFailed is published when processing fails.
type TransactionFailed struct {
	TransactionEvent
	Reason string
}

// Type implements Event.
func (TransactionFailed) Type() string { return "TransactionFailed" }

// TransactionReversed is published when a settled record is compensated.
type TransactionReversed struct {
	TransactionEvent
	ReversalID uuid.UUID
}

// Type implements Event.
func (TransactionReversed) Type() string { return "TransactionReversed" }

// NewCreated builds a TransactionCreated event.
func NewCreated(txID uuid.UUID, reference, account string, amount int64, currency string) TransactionCreated {
	return TransactionCreated{newTransactionEvent(txID, reference, account, amount, currency, "PENDING")}
}

// NewSucceeded builds a TransactionSucceeded event.
func NewSucceeded(txID uuid.UUID, reference, account string, amount int64, currency string) TransactionSucceeded {
	return TransactionSucceeded{newTransactionEvent(txID, reference, account, amount, currency, "SUCCESS")}
}

// NewFailed builds a TransactionFailed event.
func NewFailed(txID uuid.UUID, reference, account string, amount int64, currency, reason string) TransactionFailed {
	return TransactionFailed{
		TransactionEvent: newTransactionEvent(txID, reference, account, amount, currency, "FAILED"),
		Reason:           reason,
	}
}

// NewReversed builds a TransactionReversed event.
func NewReversed(txID, reversalID uuid.UUID, reference, account string, amount int64, currency string) TransactionReversed {
	return TransactionReversed{
		TransactionEvent: newTransactionEvent(txID, reference, account, amount, currency, "REVERSED"),
		ReversalID:       reversalID,
	}
}
