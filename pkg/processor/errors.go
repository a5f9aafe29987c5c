package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps structural request validation failures.
	ErrValidation = errors.New("invalid transaction request")

	// ErrLedger wraps failures of the external ledger mutation. Transactions
	// failing on this path are retryable by the sweeper.
	ErrLedger = errors.New("ledger operation failed")
)

// Gate names used in BlockedError.
const (
	GateSecurity   = "security"
	GateCompliance = "compliance"
)

// BlockedError is returned when a gating subsystem rejects a transaction.
// The transaction never reaches PROCESSING and is not retryable.
type BlockedError struct {
	Gate   string
	Code   string
	Reason string
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s gate blocked transaction [%s]: %s", e.Gate, e.Code, e.Reason)
}

// IsBlocked reports whether err is a gate rejection and returns it.
func IsBlocked(err error) (*BlockedError, bool) {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}
	return nil, false
}
