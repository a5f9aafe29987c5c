package transaction

import "errors"

var (
	// ErrAmountMustBePositive is returned when a transaction amount is not positive.
	ErrAmountMustBePositive = errors.New("transaction amount must be positive")

	// ErrInvalidType is returned when a transaction type is unknown.
	ErrInvalidType = errors.New("invalid transaction type")

	// ErrInvalidChannel is returned when an origination channel is unknown.
	ErrInvalidChannel = errors.New("invalid transaction channel")

	// ErrMissingIdempotencyKey is returned when no idempotency key is supplied.
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")

	// ErrMissingAccount is returned when no source account is supplied.
	ErrMissingAccount = errors.New("account number is required")

	// ErrMissingReceiver is returned when a transfer has no receiving account.
	ErrMissingReceiver = errors.New("receiver account number is required for transfers")

	// ErrIllegalTransition is returned when a status transition violates the
	// lifecycle state machine. This is a programming error, not a business failure.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNotFound is returned when a transaction cannot be found.
	ErrNotFound = errors.New("transaction not found")

	// ErrNotReversible is returned when reversing a transaction that is not settled.
	ErrNotReversible = errors.New("only successful transactions can be reversed")

	// ErrAlreadyReversed is returned when a transaction already has an active reversal.
	ErrAlreadyReversed = errors.New("transaction already reversed")
)
