package transaction

import (
	"fmt"
	"time"

	"github.com/obiora/bankcore/pkg/money"
)

// Status is the lifecycle state of a transaction.
type Status string

// Lifecycle states.
const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
	StatusReversed   Status = "REVERSED"
	StatusCancelled  Status = "CANCELLED"
)

// legalTransitions encodes the lifecycle state machine:
//
//	PENDING → PROCESSING → {SUCCESS, FAILED}
//	FAILED  → PROCESSING   (retry)
//	SUCCESS → REVERSED     (one-way, via compensating transaction)
//	PENDING → CANCELLED    (terminal, only before processing starts)
var legalTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusSuccess, StatusFailed},
	StatusFailed:     {StatusProcessing},
	StatusSuccess:    {StatusReversed},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is legal from s.
func (s Status) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// TransitionTo moves the record to the given status, enforcing the state
// machine. An illegal transition returns ErrIllegalTransition immediately.
func (t *Transaction) TransitionTo(to Status) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrIllegalTransition, t.Status, to)
	}
	t.Status = to
	if to == StatusSuccess || to == StatusFailed {
		t.MarkProcessed(time.Now())
	}
	return nil
}

// Succeed transitions to SUCCESS and records the post-settlement balance.
// BalanceAfter is set only on this path, keeping the invariant that it is
// non-nil iff the transaction settled.
func (t *Transaction) Succeed(balanceAfter money.Money) error {
	if err := t.TransitionTo(StatusSuccess); err != nil {
		return err
	}
	t.BalanceAfter = &balanceAfter
	return nil
}
