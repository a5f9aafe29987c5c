// Package reservation manages provisional holds on funds against the
// external ledger before a transaction is committed.
//
// Reserving before the final debit narrows the race window between
// concurrent spends on the same account; the definitive resolution is
// delegated to the ledger, which applies hold, release and debit atomically.
package reservation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
)

// Manager requests and releases holds.
type Manager struct {
	ledger ledger.Client
	logger *slog.Logger
}

// NewManager creates a reservation manager.
func NewManager(client ledger.Client, logger *slog.Logger) *Manager {
	return &Manager{
		ledger: client,
		logger: logger.With("component", "reservation"),
	}
}

// Reserve checks the account's available balance (booked minus already
// reserved) and requests a hold for the amount. Insufficient funds reject
// without touching the ledger.
func (m *Manager) Reserve(ctx context.Context, accountNumber string, amount money.Money, reference, reason string) (*ledger.Hold, error) {
	balance, err := m.ledger.GetBalance(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", reference, err)
	}

	available, err := balance.Available()
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", reference, err)
	}
	enough, err := available.GreaterThan(amount)
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", reference, err)
	}
	if !enough && !available.Equals(amount) {
		m.logger.Warn("reservation rejected, insufficient available balance",
			"account", accountNumber, "reference", reference,
			"available", available.String(), "requested", amount.String())
		return nil, ledger.ErrInsufficientFunds
	}

	hold, err := m.ledger.Hold(ctx, accountNumber, amount, reference, reason)
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", reference, err)
	}
	m.logger.Info("funds reserved",
		"account", accountNumber, "reference", reference, "holdID", hold.HoldID)
	return hold, nil
}

// Release reverses a previously placed hold.
func (m *Manager) Release(ctx context.Context, accountNumber, holdID, reference, reason string) error {
	if err := m.ledger.Release(ctx, accountNumber, holdID, reference, reason); err != nil {
		return fmt.Errorf("release hold %s: %w", holdID, err)
	}
	m.logger.Info("hold released",
		"account", accountNumber, "reference", reference, "holdID", holdID)
	return nil
}
