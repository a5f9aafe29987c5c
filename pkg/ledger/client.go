// Package ledger defines the boundary with the external Account/Ledger
// service, which owns balances, holds and account limits.
//
// Debit and Credit must be idempotent per reference on the ledger side:
// re-applying a mutation with a reference the ledger has already settled is a
// no-op reporting success. The retry sweeper depends on this to reconcile the
// dual-write hazard between the local record and the remote ledger.
package ledger

import (
	"context"
	"errors"

	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

var (
	// ErrInsufficientFunds is returned when an account cannot cover a mutation or hold.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLimitExceeded is returned when a mutation breaches the account's
	// daily, weekly or monthly caps.
	ErrLimitExceeded = errors.New("account limit exceeded")

	// ErrUnsupportedCurrency is returned when the account does not hold the currency.
	ErrUnsupportedCurrency = errors.New("currency not supported for account")

	// ErrUnavailable is returned when the ledger service cannot be reached.
	ErrUnavailable = errors.New("ledger service unavailable")
)

// Hold is a provisional lock on funds owned by the ledger. It is never
// persisted locally; this core only requests and releases it.
type Hold struct {
	HoldID        string
	AccountNumber string
	Amount        money.Money
	Reference     string
	Reason        string
}

// Balance is an account's position as reported by the ledger.
type Balance struct {
	AccountNumber string
	Ledger        money.Money // booked balance
	Reserved      money.Money // sum of active holds
}

// Available returns the spendable balance (booked minus reserved).
func (b Balance) Available() (money.Money, error) {
	return b.Ledger.Sub(b.Reserved)
}

// Client is the outbound interface to the Account/Ledger service.
type Client interface {
	// ValidateLimits checks the mutation against the account's daily, weekly
	// and monthly caps and its supported currencies.
	ValidateLimits(ctx context.Context, accountNumber string, amount money.Money, txType transaction.Type, channel transaction.Channel) error

	// Debit removes amount from the account, keyed idempotently by reference.
	Debit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error

	// Credit adds amount to the account, keyed idempotently by reference.
	Credit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error

	// Hold places a provisional lock on funds and returns its identifier.
	Hold(ctx context.Context, accountNumber string, amount money.Money, reference, reason string) (*Hold, error)

	// Release reverses a previously placed hold.
	Release(ctx context.Context, accountNumber, holdID, reference, reason string) error

	// GetBalance returns the account's booked and reserved position.
	GetBalance(ctx context.Context, accountNumber string) (*Balance, error)
}
