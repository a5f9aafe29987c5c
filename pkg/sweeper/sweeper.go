// Package sweeper recovers failed and stuck transactions in the background.
//
// Two periodic sweeps run over the shared transaction store:
//   - the retry sweep re-invokes the ledger mutation for FAILED records whose
//     retry budget is not exhausted; records that settle through the payment
//     gateway are flagged for manual reconciliation instead, since only the
//     gateway can complete their interbank leg;
//   - the stuck sweep force-fails records abandoned in PROCESSING by a
//     crashed or timed-out worker.
//
// Both sweeps claim records with an optimistic status compare-and-swap so
// concurrent instances never double-process the same transaction, and the
// retry sweep is paced by a token bucket rather than per-item sleeps.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/obiora/bankcore/pkg/domain/events"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/eventbus"
	"github.com/obiora/bankcore/pkg/ledger"
	txrepo "github.com/obiora/bankcore/pkg/repository/transaction"
)

// Config tunes the sweep cadence.
type Config struct {
	// RetryInterval is how often the retry sweep runs.
	RetryInterval time.Duration
	// StuckInterval is how often the stuck-transaction sweep runs.
	StuckInterval time.Duration
	// StuckAfter is how long a record may sit in PROCESSING before it is
	// considered abandoned.
	StuckAfter time.Duration
	// RetriesPerSecond paces ledger re-invocations across a sweep batch.
	RetriesPerSecond float64
	// BatchSize caps how many records one sweep claims.
	BatchSize int
}

// DefaultConfig returns the production cadence.
func DefaultConfig() Config {
	return Config{
		RetryInterval:    30 * time.Second,
		StuckInterval:    5 * time.Minute,
		StuckAfter:       10 * time.Minute,
		RetriesPerSecond: 5,
		BatchSize:        100,
	}
}

// Sweeper runs the background recovery loops.
type Sweeper struct {
	repo    txrepo.Repository
	ledger  ledger.Client
	bus     eventbus.Bus
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a sweeper.
func New(repo txrepo.Repository, ledgerClient ledger.Client, bus eventbus.Bus, cfg Config, logger *slog.Logger) *Sweeper {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.RetriesPerSecond <= 0 {
		cfg.RetriesPerSecond = DefaultConfig().RetriesPerSecond
	}
	return &Sweeper{
		repo:    repo,
		ledger:  ledgerClient,
		bus:     bus,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RetriesPerSecond), 1),
		logger:  logger.With("component", "sweeper"),
	}
}

// Start runs both sweep loops until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	retryTicker := time.NewTicker(s.cfg.RetryInterval)
	stuckTicker := time.NewTicker(s.cfg.StuckInterval)
	defer retryTicker.Stop()
	defer stuckTicker.Stop()

	s.logger.Info("sweeper started",
		"retryInterval", s.cfg.RetryInterval, "stuckInterval", s.cfg.StuckInterval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-retryTicker.C:
			s.SweepRetries(ctx)
		case <-stuckTicker.C:
			s.SweepStuck(ctx)
		}
	}
}

// SweepRetries finds retryable FAILED transactions and re-invokes the ledger
// mutation for each, bounded by the per-type retry policy.
func (s *Sweeper) SweepRetries(ctx context.Context) {
	cutoff := time.Now().Add(-minDelay())
	batch, err := s.repo.ListRetryable(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("retry sweep query failed", "error", err)
		return
	}
	for _, tx := range batch {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		s.retry(ctx, tx)
	}
}

// retry re-processes a single failed transaction. The FAILED→PROCESSING
// compare-and-swap is the claim: losing it means another instance owns the
// record.
func (s *Sweeper) retry(ctx context.Context, tx *transaction.Transaction) {
	policy := PolicyFor(tx)
	logger := s.logger.With("reference", tx.Reference, "attempts", tx.RetryAttempts())

	// A transfer that failed on the gateway leg cannot be recovered here:
	// the internal debit already landed idempotently, so re-invoking it would
	// report success while the interbank credit never moved. Only the gateway
	// can settle those, so hand them to operations instead.
	if tx.GatewaySettled() {
		s.flagManualReconciliation(ctx, tx)
		return
	}

	lastAttempt := tx.CreatedAt
	if tx.ProcessedAt != nil {
		lastAttempt = *tx.ProcessedAt
	}
	if time.Since(lastAttempt) < policy.Delay {
		return
	}
	if tx.RetryAttempts() >= policy.MaxAttempts {
		s.flagPermanent(ctx, tx)
		return
	}

	claimed, err := s.repo.UpdateStatusIf(ctx, tx.ID, transaction.StatusFailed, transaction.StatusProcessing)
	if err != nil {
		logger.Error("retry claim failed", "error", err)
		return
	}
	if !claimed {
		return
	}
	tx.Status = transaction.StatusProcessing
	tx.IncrementRetryAttempts()

	opCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	// The ledger applies mutations idempotently per reference, so re-invoking
	// a mutation that actually landed before the local failure is a no-op.
	if err := s.mutate(opCtx, tx); err != nil {
		logger.Warn("retry attempt failed", "error", err)
		tx.SetFailureReason(err.Error())
		if failErr := tx.TransitionTo(transaction.StatusFailed); failErr != nil {
			logger.Error("could not mark retry failure", "error", failErr)
			return
		}
		if tx.RetryAttempts() >= policy.MaxAttempts {
			tx.MarkPermanentlyFailed()
			logger.Warn("retry budget exhausted, permanently failed")
		}
		if err := s.repo.Update(ctx, tx); err != nil {
			logger.Error("could not persist retry failure", "error", err)
		}
		s.publish(ctx, events.NewFailed(tx.ID, tx.Reference, tx.AccountNumber,
			tx.Amount.Amount(), tx.Amount.Currency().String(), err.Error()))
		return
	}

	balance, err := s.ledger.GetBalance(opCtx, tx.AccountNumber)
	if err != nil {
		logger.Warn("balance fetch after retry failed", "error", err)
		tx.SetFailureReason(err.Error())
		if failErr := tx.TransitionTo(transaction.StatusFailed); failErr == nil {
			if err := s.repo.Update(ctx, tx); err != nil {
				logger.Error("could not persist retry failure", "error", err)
			}
		}
		return
	}
	if err := tx.Succeed(balance.Ledger); err != nil {
		logger.Error("could not settle retried transaction", "error", err)
		return
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		logger.Error("could not persist retry success", "error", err)
		return
	}
	if tx.IsReversal() {
		s.markOriginalReversed(ctx, tx)
	}
	logger.Info("retry succeeded")
	s.publish(ctx, events.NewSucceeded(tx.ID, tx.Reference, tx.AccountNumber,
		tx.Amount.Amount(), tx.Amount.Currency().String()))
}

// mutate re-invokes the ledger movement for the transaction.
func (s *Sweeper) mutate(ctx context.Context, tx *transaction.Transaction) error {
	if tx.Direction == transaction.DirectionDebit {
		total, err := tx.Amount.Add(tx.Fee)
		if err != nil {
			return err
		}
		return s.ledger.Debit(ctx, tx.AccountNumber, total, tx.Reference, tx.Description, tx.Type)
	}
	return s.ledger.Credit(ctx, tx.AccountNumber, tx.Amount, tx.Reference, tx.Description, tx.Type)
}

// markOriginalReversed completes a reversal that settled on the retry path.
func (s *Sweeper) markOriginalReversed(ctx context.Context, reversal *transaction.Transaction) {
	original, err := s.repo.Get(ctx, *reversal.ParentID)
	if err != nil {
		s.logger.Error("could not load reversal parent", "reference", reversal.Reference, "error", err)
		return
	}
	if original.Status != transaction.StatusSuccess {
		return
	}
	if err := original.TransitionTo(transaction.StatusReversed); err != nil {
		return
	}
	original.SetReversal(reversal.ID.String(), "completed by retry sweep")
	if err := s.repo.Update(ctx, original); err != nil {
		s.logger.Error("could not persist parent reversal", "reference", original.Reference, "error", err)
	}
}

// flagPermanent marks a record whose retry budget is spent so later sweeps
// skip it. Surfaced to operations through the failure event stream.
func (s *Sweeper) flagPermanent(ctx context.Context, tx *transaction.Transaction) {
	if tx.PermanentlyFailed() {
		return
	}
	tx.MarkPermanentlyFailed()
	if err := s.repo.Update(ctx, tx); err != nil {
		s.logger.Error("could not flag permanent failure", "reference", tx.Reference, "error", err)
		return
	}
	s.logger.Warn("transaction permanently failed", "reference", tx.Reference,
		"attempts", tx.RetryAttempts())
	s.publish(ctx, events.NewFailed(tx.ID, tx.Reference, tx.AccountNumber,
		tx.Amount.Amount(), tx.Amount.Currency().String(), "retry attempts exhausted"))
}

// flagManualReconciliation pulls a gateway-settled transfer out of the retry
// stream. The record stays FAILED with the gateway result intact; operations
// resolve it against the gateway, not the internal ledger.
func (s *Sweeper) flagManualReconciliation(ctx context.Context, tx *transaction.Transaction) {
	if tx.PermanentlyFailed() {
		return
	}
	tx.MarkPermanentlyFailed()
	tx.MarkManualReconciliation()
	if err := s.repo.Update(ctx, tx); err != nil {
		s.logger.Error("could not flag gateway transfer for reconciliation",
			"reference", tx.Reference, "error", err)
		return
	}
	s.logger.Warn("gateway transfer needs manual reconciliation",
		"reference", tx.Reference, "gatewayTransactionId", tx.GatewayTransactionID())
	s.publish(ctx, events.NewFailed(tx.ID, tx.Reference, tx.AccountNumber,
		tx.Amount.Amount(), tx.Amount.Currency().String(),
		"gateway settlement requires manual reconciliation"))
}

// SweepStuck force-fails transactions abandoned in PROCESSING, recovering
// from worker crashes and timeouts.
func (s *Sweeper) SweepStuck(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.StuckAfter)
	batch, err := s.repo.ListStuck(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("stuck sweep query failed", "error", err)
		return
	}
	for _, tx := range batch {
		claimed, err := s.repo.UpdateStatusIf(ctx, tx.ID, transaction.StatusProcessing, transaction.StatusFailed)
		if err != nil {
			s.logger.Error("stuck claim failed", "reference", tx.Reference, "error", err)
			continue
		}
		if !claimed {
			continue
		}
		tx.Status = transaction.StatusFailed
		tx.MarkStuckRecovered()
		tx.SetFailureReason("stuck in PROCESSING beyond timeout")
		if err := s.repo.Update(ctx, tx); err != nil {
			s.logger.Error("could not persist stuck recovery", "reference", tx.Reference, "error", err)
			continue
		}
		s.logger.Warn("stuck transaction force-failed", "reference", tx.Reference,
			"age", time.Since(tx.CreatedAt))
	}
}

func minDelay() time.Duration {
	if debitPolicy.Delay < creditPolicy.Delay {
		return debitPolicy.Delay
	}
	return creditPolicy.Delay
}

func (s *Sweeper) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "eventType", event.Type(), "error", err)
	}
}
