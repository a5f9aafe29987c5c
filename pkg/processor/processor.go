// Package processor orchestrates a transaction request into a settled ledger
// movement: structural validation, idempotency dedup, security and compliance
// gating, fee computation, balance reservation, the external ledger mutation
// and the local status lifecycle.
//
// The local record's writes and the remote ledger call are not atomic with
// each other. The idempotency key stops a re-submitted request from creating
// a second debit, and the retry sweeper reconciles records left between the
// two writes; the ledger itself applies mutations idempotently per reference.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/obiora/bankcore/pkg/compliance"
	"github.com/obiora/bankcore/pkg/domain/events"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/eventbus"
	"github.com/obiora/bankcore/pkg/fees"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
	txrepo "github.com/obiora/bankcore/pkg/repository/transaction"
	"github.com/obiora/bankcore/pkg/reservation"
	"github.com/obiora/bankcore/pkg/security"
)

// Request is an inbound transaction request.
type Request struct {
	AccountNumber         string              `validate:"required"`
	ReceiverAccountNumber string              `validate:"required_if=Type TRANSFER"`
	CustomerID            string              `validate:"required"`
	Amount                float64             `validate:"gt=0"`
	Currency              money.Code          `validate:"omitempty,len=3"`
	Type                  transaction.Type    `validate:"required"`
	Channel               transaction.Channel `validate:"required"`
	IdempotencyKey        string              `validate:"required"`
	Description           string
	PIN                   string
	OTP                   string
}

// Result is the outcome of processing a request.
type Result struct {
	Transaction *transaction.Transaction
	// Replayed is true when the idempotency key had already been seen and the
	// existing record was returned without reprocessing.
	Replayed bool
}

// Service sequences transaction processing.
type Service struct {
	repo         txrepo.Repository
	ledger       ledger.Client
	security     *security.Service
	compliance   *compliance.Service
	reservations *reservation.Manager
	bus          eventbus.Bus
	settler      Settler
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewService creates a transaction processor.
func NewService(
	repo txrepo.Repository,
	ledgerClient ledger.Client,
	securityGate *security.Service,
	complianceGate *compliance.Service,
	reservations *reservation.Manager,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		ledger:       ledgerClient,
		security:     securityGate,
		compliance:   complianceGate,
		reservations: reservations,
		bus:          bus,
		settler:      NewLedgerSettler(ledgerClient),
		validate:     validator.New(),
		logger:       logger.With("component", "processor"),
	}
}

// Process runs the full pipeline with the internal-ledger settler.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	return s.ProcessWith(ctx, req, s.settler)
}

// ProcessWith runs the full pipeline using the supplied settler for the
// money movement. The external transfer adapter uses this entry point.
func (s *Service) ProcessWith(ctx context.Context, req Request, settler Settler) (*Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Idempotency: a second request with the same key returns the existing
	// record unchanged, never a second debit.
	if existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
		s.logger.Info("idempotent replay", "idempotencyKey", req.IdempotencyKey,
			"reference", existing.Reference)
		return &Result{Transaction: existing, Replayed: true}, nil
	} else if !errors.Is(err, transaction.ErrNotFound) {
		return nil, err
	}

	tx, err := s.buildRecord(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		// Two requests with the same key can both miss the lookup above and
		// race into Create; the unique index lets only one through. The loser
		// re-fetches and returns the winner's record as a replay.
		if existing, lookupErr := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil {
			s.logger.Info("idempotent replay after create race",
				"idempotencyKey", req.IdempotencyKey, "reference", existing.Reference)
			return &Result{Transaction: existing, Replayed: true}, nil
		}
		return nil, err
	}
	s.publish(ctx, events.NewCreated(
		tx.ID, tx.Reference, tx.AccountNumber, tx.Amount.Amount(), tx.Amount.Currency().String()))

	logger := s.logger.With("reference", tx.Reference, "type", tx.Type, "amount", tx.Amount.String())

	if err := s.runGates(ctx, tx, req); err != nil {
		return nil, err
	}

	if err := s.ledger.ValidateLimits(ctx, tx.AccountNumber, tx.Amount, tx.Type, tx.Channel); err != nil {
		logger.Warn("limit validation rejected transaction", "error", err)
		s.cancel(ctx, tx, err.Error())
		return nil, err
	}

	tx.Fee = fees.Calculate(tx)

	if err := s.settle(ctx, tx, settler); err != nil {
		return nil, err
	}

	logger.Info("transaction settled", "balanceAfter", tx.BalanceAfter.String())
	return &Result{Transaction: tx}, nil
}

// runGates consults the security and compliance gates. A blocking result
// cancels the record before it ever reaches PROCESSING; warnings are attached
// to the audit trail.
func (s *Service) runGates(ctx context.Context, tx *transaction.Transaction, req Request) error {
	secReport := s.security.Authorize(ctx, tx, security.Credentials{PIN: req.PIN, OTP: req.OTP})
	if blocked, ok := secReport.Blocked(); ok {
		s.cancel(ctx, tx, blocked.Message)
		return &BlockedError{Gate: GateSecurity, Code: blocked.Code, Reason: blocked.Message}
	}

	compReport := s.compliance.Check(ctx, tx)
	if blocked, ok := compReport.Blocked(); ok {
		s.cancel(ctx, tx, blocked.Message)
		return &BlockedError{Gate: GateCompliance, Code: blocked.Code, Reason: blocked.Message}
	}

	tx.AppendWarnings(secReport.Warnings()...)
	tx.AppendWarnings(compReport.Warnings()...)
	return s.repo.Update(ctx, tx)
}

// settle reserves funds for debit movements, transitions the record through
// PROCESSING and applies the external mutation. On success the record settles
// with the post-mutation balance; on any failure it is marked FAILED and the
// error is surfaced to the caller.
func (s *Service) settle(ctx context.Context, tx *transaction.Transaction, settler Settler) error {
	total := tx.Amount
	if tx.Direction == transaction.DirectionDebit {
		var err error
		if total, err = tx.Amount.Add(tx.Fee); err != nil {
			return err
		}
	}

	var hold *ledger.Hold
	if tx.Direction == transaction.DirectionDebit {
		var err error
		hold, err = s.reservations.Reserve(ctx, tx.AccountNumber, total, tx.Reference, "pre-settlement hold")
		if err != nil {
			s.fail(ctx, tx, err)
			return fmt.Errorf("%w: %v", ErrLedger, err)
		}
	}

	if err := tx.TransitionTo(transaction.StatusProcessing); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return err
	}

	if hold != nil {
		// The ledger consumes the hold atomically with the debit; release is
		// only needed when settlement never happens.
		defer func() {
			if tx.Status != transaction.StatusSuccess {
				if err := s.reservations.Release(ctx, tx.AccountNumber, hold.HoldID, tx.Reference, "settlement failed"); err != nil {
					s.logger.Error("failed to release hold", "reference", tx.Reference, "error", err)
				}
			}
		}()
	}

	if err := settler.Settle(ctx, tx, total); err != nil {
		s.fail(ctx, tx, err)
		return fmt.Errorf("%w: %v", ErrLedger, err)
	}

	balance, err := s.ledger.GetBalance(ctx, tx.AccountNumber)
	if err != nil {
		s.fail(ctx, tx, err)
		return fmt.Errorf("%w: %v", ErrLedger, err)
	}
	if err := tx.Succeed(balance.Ledger); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return err
	}
	s.publish(ctx, events.NewSucceeded(
		tx.ID, tx.Reference, tx.AccountNumber, tx.Amount.Amount(), tx.Amount.Currency().String()))
	return nil
}

// Reverse creates a compensating transaction against a settled one. The
// original is marked REVERSED only after the reversal itself settles; a
// failed reversal leaves the original untouched.
func (s *Service) Reverse(ctx context.Context, id uuid.UUID, reason string) (*transaction.Transaction, error) {
	original, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != transaction.StatusSuccess {
		return nil, fmt.Errorf("%w: status is %s", transaction.ErrNotReversible, original.Status)
	}
	if original.ReversalID() != "" {
		return nil, transaction.ErrAlreadyReversed
	}

	builder := transaction.New().
		WithIdempotencyKey("reversal:" + original.Reference).
		WithAccount(original.AccountNumber).
		WithCustomer(original.CustomerID).
		WithAmount(original.Amount).
		WithType(transaction.TypeReversal).
		WithChannel(transaction.ChannelSystem).
		WithDirection(original.Direction.Invert()).
		WithParent(original.ID).
		WithDescription("reversal of " + original.Reference + ": " + reason)
	if original.ReceiverAccountNumber != "" {
		builder = builder.WithReceiver(original.ReceiverAccountNumber)
	}
	reversal, err := builder.Build()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, reversal); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, reversal, s.settler); err != nil {
		return nil, err
	}

	if err := original.TransitionTo(transaction.StatusReversed); err != nil {
		return nil, err
	}
	original.SetReversal(reversal.ID.String(), reason)
	if err := s.repo.Update(ctx, original); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewReversed(
		original.ID, reversal.ID, original.Reference, original.AccountNumber,
		original.Amount.Amount(), original.Amount.Currency().String()))

	s.logger.Info("transaction reversed",
		"reference", original.Reference, "reversalReference", reversal.Reference)
	return reversal, nil
}

func (s *Service) buildRecord(req Request) (*transaction.Transaction, error) {
	currency := req.Currency
	if currency == "" {
		currency = money.DefaultCode
	}
	amount, err := money.New(req.Amount, currency)
	if err != nil {
		return nil, err
	}
	builder := transaction.New().
		WithIdempotencyKey(req.IdempotencyKey).
		WithAccount(req.AccountNumber).
		WithCustomer(req.CustomerID).
		WithAmount(amount).
		WithType(req.Type).
		WithChannel(req.Channel).
		WithDescription(req.Description)
	if req.ReceiverAccountNumber != "" {
		builder = builder.WithReceiver(req.ReceiverAccountNumber)
	}
	return builder.Build()
}

// cancel terminates a PENDING record before processing starts.
func (s *Service) cancel(ctx context.Context, tx *transaction.Transaction, reason string) {
	tx.SetFailureReason(reason)
	if err := tx.TransitionTo(transaction.StatusCancelled); err != nil {
		s.logger.Error("failed to cancel transaction", "reference", tx.Reference, "error", err)
		return
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		s.logger.Error("failed to persist cancellation", "reference", tx.Reference, "error", err)
	}
}

// fail marks the record FAILED and publishes the failure event.
func (s *Service) fail(ctx context.Context, tx *transaction.Transaction, cause error) {
	tx.SetFailureReason(cause.Error())
	if tx.Status == transaction.StatusProcessing {
		if err := tx.TransitionTo(transaction.StatusFailed); err != nil {
			s.logger.Error("failed to mark transaction failed", "reference", tx.Reference, "error", err)
			return
		}
	} else if err := tx.TransitionTo(transaction.StatusProcessing); err == nil {
		// A pre-settlement failure still lands on FAILED so the sweeper can
		// pick it up.
		if err := tx.TransitionTo(transaction.StatusFailed); err != nil {
			s.logger.Error("failed to mark transaction failed", "reference", tx.Reference, "error", err)
			return
		}
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		s.logger.Error("failed to persist failure", "reference", tx.Reference, "error", err)
	}
	s.publish(ctx, events.NewFailed(
		tx.ID, tx.Reference, tx.AccountNumber, tx.Amount.Amount(),
		tx.Amount.Currency().String(), cause.Error()))
}

// publish emits an event, tolerating bus failures.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "eventType", event.Type(), "error", err)
	}
}
