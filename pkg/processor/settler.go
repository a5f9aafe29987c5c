package processor

import (
	"context"

	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
)

// Settler performs the external money movement for a transaction once it has
// passed every gate. The default settler mutates the internal ledger; the
// external transfer adapter substitutes a gateway-backed one.
//
// Settle must be idempotent per transaction reference so a sweeper retry
// cannot double-apply a movement that already reached the ledger.
type Settler interface {
	Settle(ctx context.Context, tx *transaction.Transaction, total money.Money) error
}

// ledgerSettler applies the movement to the internal ledger: debit-direction
// transactions debit amount plus fee, credit-direction ones credit the amount.
type ledgerSettler struct {
	client ledger.Client
}

// NewLedgerSettler returns the default internal-ledger settler.
func NewLedgerSettler(client ledger.Client) Settler {
	return &ledgerSettler{client: client}
}

func (s *ledgerSettler) Settle(ctx context.Context, tx *transaction.Transaction, total money.Money) error {
	if tx.Direction == transaction.DirectionDebit {
		return s.client.Debit(ctx, tx.AccountNumber, total, tx.Reference, tx.Description, tx.Type)
	}
	return s.client.Credit(ctx, tx.AccountNumber, tx.Amount, tx.Reference, tx.Description, tx.Type)
}
