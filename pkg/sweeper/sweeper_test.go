package sweeper_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	infraeventbus "github.com/obiora/bankcore/infra/eventbus"
	"github.com/obiora/bankcore/internal/fixtures/mocks"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
	"github.com/obiora/bankcore/pkg/sweeper"
)

type fixture struct {
	repo   *mocks.TransactionRepository
	ledger *mocks.LedgerClient
	bus    *infraeventbus.MemoryBus
	sw     *sweeper.Sweeper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		repo:   new(mocks.TransactionRepository),
		ledger: new(mocks.LedgerClient),
		bus:    infraeventbus.NewWithMemory(logger),
	}
	// High rate so the pacing bucket never slows a test batch down.
	f.sw = f.swWith(sweeper.Config{RetriesPerSecond: 10_000, BatchSize: 100}, logger)
	return f
}

func (f *fixture) swWith(cfg sweeper.Config, logger *slog.Logger) *sweeper.Sweeper {
	return sweeper.New(f.repo, f.ledger, f.bus, cfg, logger)
}

// failedTx builds a FAILED transaction whose last attempt is old enough to be
// outside the retry cooldown.
func failedTx(t *testing.T, txType transaction.Type, attempts int) *transaction.Transaction {
	t.Helper()
	builder := transaction.New().
		WithIdempotencyKey("idem-" + string(txType)).
		WithAccount("0123456789").
		WithCustomer("cust-1").
		WithAmount(money.Must(20_000, money.NGN)).
		WithFee(money.Must(200, money.NGN)).
		WithType(txType).
		WithChannel(transaction.ChannelMobileApp)
	if txType == transaction.TypeTransfer {
		builder = builder.WithReceiver("9876543210")
	}
	tx, err := builder.Build()
	require.NoError(t, err)
	require.NoError(t, tx.TransitionTo(transaction.StatusProcessing))
	require.NoError(t, tx.TransitionTo(transaction.StatusFailed))
	tx.MarkProcessed(time.Now().Add(-time.Hour))
	for i := 0; i < attempts; i++ {
		tx.IncrementRetryAttempts()
	}
	return tx
}

func (f *fixture) eventTypes() []string {
	var types []string
	for _, e := range f.bus.Published() {
		types = append(types, e.Type())
	}
	return types
}

func TestSweepRetries_DebitRetrySucceeds(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 1)
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusFailed, transaction.StatusProcessing).
		Return(true, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)
	// The retry re-invokes the full debit, amount plus fee.
	f.ledger.On("Debit", mock.Anything, "0123456789", money.Must(20_200, money.NGN),
		tx.Reference, mock.Anything, transaction.TypeWithdrawal).Return(nil)
	f.ledger.On("GetBalance", mock.Anything, "0123456789").Return(&ledger.Balance{
		Ledger:   money.Must(79_800, money.NGN),
		Reserved: money.Zero(money.NGN),
	}, nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusSuccess, tx.Status)
	assert.Equal(t, 2, tx.RetryAttempts())
	require.NotNil(t, tx.BalanceAfter)
	assert.Equal(t, []string{"TransactionSucceeded"}, f.eventTypes())
}

func TestSweepRetries_ExhaustedBudgetFlagsPermanent(t *testing.T) {
	f := newFixture(t)
	// A debit gets three attempts; the fourth never happens.
	tx := failedTx(t, transaction.TypeWithdrawal, 3)
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)

	f.sw.SweepRetries(context.Background())

	assert.True(t, tx.PermanentlyFailed())
	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.Equal(t, 3, tx.RetryAttempts())
	f.repo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Debit",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"TransactionFailed"}, f.eventTypes())
}

func TestSweepRetries_FinalAttemptFailureIsPermanent(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 2)
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusFailed, transaction.StatusProcessing).
		Return(true, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)
	f.ledger.On("Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("still unreachable"))

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.Equal(t, 3, tx.RetryAttempts())
	assert.True(t, tx.PermanentlyFailed())
	assert.Equal(t, []string{"TransactionFailed"}, f.eventTypes())
}

func TestSweepRetries_RespectsCooldown(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 0)
	// Last attempt one minute ago; the debit cooldown is five.
	tx.MarkProcessed(time.Now().Add(-time.Minute))
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.Zero(t, tx.RetryAttempts())
	f.repo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepRetries_LostClaimIsSkipped(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 1)
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	// Another instance won the FAILED→PROCESSING compare-and-swap.
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusFailed, transaction.StatusProcessing).
		Return(false, nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, 1, tx.RetryAttempts())
	f.ledger.AssertNotCalled(t, "Debit",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepRetries_CreditGetsFiveAttempts(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeDeposit, 4)
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusFailed, transaction.StatusProcessing).
		Return(true, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)
	f.ledger.On("Credit", mock.Anything, "0123456789", money.Must(20_000, money.NGN),
		tx.Reference, mock.Anything, transaction.TypeDeposit).Return(nil)
	f.ledger.On("GetBalance", mock.Anything, "0123456789").Return(&ledger.Balance{
		Ledger:   money.Must(40_000, money.NGN),
		Reserved: money.Zero(money.NGN),
	}, nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusSuccess, tx.Status)
	assert.Equal(t, 5, tx.RetryAttempts())
}

func TestSweepRetries_GatewayDeclinedTransferNotRetriedInternally(t *testing.T) {
	f := newFixture(t)
	// A transfer that reached the gateway and was declined: the internal debit
	// already landed, the interbank credit never did. Re-invoking the ledger
	// here would mint a success without moving the money.
	tx := failedTx(t, transaction.TypeTransfer, 0)
	tx.SetDestinationBank("058", "Sterling Bank", "Ada Obi")
	tx.SetGatewayResult("", "destination account closed")
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.Empty(t, tx.GatewayTransactionID())
	assert.True(t, tx.PermanentlyFailed())
	assert.True(t, tx.NeedsManualReconciliation())
	f.repo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Debit",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"TransactionFailed"}, f.eventTypes())
}

func TestSweepRetries_GatewayOutageTransferFlaggedOnce(t *testing.T) {
	f := newFixture(t)
	// Gateway unreachable before it ever assigned an id: only the gateway
	// error marks the record. A second sweep leaves the flagged record alone.
	tx := failedTx(t, transaction.TypeTransfer, 0)
	tx.SetGatewayResult("", "gateway unavailable: connection refused")
	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil).Once()

	f.sw.SweepRetries(context.Background())
	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.True(t, tx.NeedsManualReconciliation())
	f.repo.AssertNumberOfCalls(t, "Update", 1)
	assert.Equal(t, []string{"TransactionFailed"}, f.eventTypes())
}

func TestSweepRetries_ReversalSettlementMarksOriginal(t *testing.T) {
	f := newFixture(t)

	original, err := transaction.New().
		WithIdempotencyKey("idem-orig").
		WithAccount("0123456789").
		WithCustomer("cust-1").
		WithAmount(money.Must(20_000, money.NGN)).
		WithType(transaction.TypeWithdrawal).
		WithChannel(transaction.ChannelMobileApp).
		Build()
	require.NoError(t, err)
	require.NoError(t, original.TransitionTo(transaction.StatusProcessing))
	require.NoError(t, original.Succeed(money.Must(80_000, money.NGN)))

	reversal, err := transaction.New().
		WithIdempotencyKey("reversal:" + original.Reference).
		WithAccount(original.AccountNumber).
		WithCustomer(original.CustomerID).
		WithAmount(original.Amount).
		WithType(transaction.TypeReversal).
		WithChannel(transaction.ChannelSystem).
		WithDirection(transaction.DirectionCredit).
		WithParent(original.ID).
		Build()
	require.NoError(t, err)
	require.NoError(t, reversal.TransitionTo(transaction.StatusProcessing))
	require.NoError(t, reversal.TransitionTo(transaction.StatusFailed))
	reversal.MarkProcessed(time.Now().Add(-time.Hour))

	f.repo.On("ListRetryable", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{reversal}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, reversal.ID, transaction.StatusFailed, transaction.StatusProcessing).
		Return(true, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Get", mock.Anything, original.ID).Return(original, nil)
	f.ledger.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	f.ledger.On("GetBalance", mock.Anything, mock.Anything).Return(&ledger.Balance{
		Ledger:   money.Must(100_000, money.NGN),
		Reserved: money.Zero(money.NGN),
	}, nil)

	f.sw.SweepRetries(context.Background())

	assert.Equal(t, transaction.StatusSuccess, reversal.Status)
	assert.Equal(t, transaction.StatusReversed, original.Status)
	assert.Equal(t, reversal.ID.String(), original.ReversalID())
}

func TestSweepStuck_ForceFailsAbandonedRecords(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 0)
	require.NoError(t, tx.TransitionTo(transaction.StatusProcessing))

	f.repo.On("ListStuck", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusProcessing, transaction.StatusFailed).
		Return(true, nil)
	f.repo.On("Update", mock.Anything, tx).Return(nil)

	f.sw.SweepStuck(context.Background())

	assert.Equal(t, transaction.StatusFailed, tx.Status)
	assert.Equal(t, true, tx.Metadata["stuckRecovered"])
}

func TestSweepStuck_LostClaimIsSkipped(t *testing.T) {
	f := newFixture(t)
	tx := failedTx(t, transaction.TypeWithdrawal, 0)
	require.NoError(t, tx.TransitionTo(transaction.StatusProcessing))

	f.repo.On("ListStuck", mock.Anything, mock.Anything, 100).
		Return([]*transaction.Transaction{tx}, nil)
	f.repo.On("UpdateStatusIf", mock.Anything, tx.ID, transaction.StatusProcessing, transaction.StatusFailed).
		Return(false, nil)

	f.sw.SweepStuck(context.Background())

	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPolicyFor(t *testing.T) {
	debit := failedTx(t, transaction.TypeWithdrawal, 0)
	credit := failedTx(t, transaction.TypeDeposit, 0)

	assert.Equal(t, sweeper.RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Minute, Timeout: 30 * time.Second},
		sweeper.PolicyFor(debit))
	assert.Equal(t, sweeper.RetryPolicy{MaxAttempts: 5, Delay: 2 * time.Minute, Timeout: 30 * time.Second},
		sweeper.PolicyFor(credit))
}
