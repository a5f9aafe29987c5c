package sweeper

import (
	"time"

	"github.com/obiora/bankcore/pkg/domain/transaction"
)

// RetryPolicy bounds how a failed transaction may be retried.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration
}

// Debit movements compensate badly when over-retried, so they get fewer
// attempts and a longer cooldown than credit movements.
var (
	debitPolicy  = RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Minute, Timeout: 30 * time.Second}
	creditPolicy = RetryPolicy{MaxAttempts: 5, Delay: 2 * time.Minute, Timeout: 30 * time.Second}
)

// PolicyFor selects the retry policy for a transaction.
func PolicyFor(tx *transaction.Transaction) RetryPolicy {
	if tx.Direction == transaction.DirectionDebit {
		return debitPolicy
	}
	return creditPolicy
}
