// Package transfer specializes the transaction processor for interbank
// movement through the payment gateway: per-rail amount bounds,
// destination-bank metadata and the gateway settlement path.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/gateway"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
	"github.com/obiora/bankcore/pkg/processor"
)

// Interbank bounds, in kobo.
const (
	minExternalAmount money.Amount = 1_000_00     // ₦1,000
	maxExternalAmount money.Amount = 1_000_000_00 // ₦1,000,000
	minRTGSAmount     money.Amount = 100_000_00   // ₦100,000 RTGS floor
)

var (
	// ErrAmountOutOfBounds is returned when an external transfer amount is
	// outside the rail's allowed range.
	ErrAmountOutOfBounds = errors.New("external transfer amount out of bounds")

	// ErrGatewayDeclined is returned when the gateway rejects the transfer.
	ErrGatewayDeclined = errors.New("payment gateway declined transfer")
)

// Request is an interbank transfer request.
type Request struct {
	processor.Request
	DestinationBankCode    string
	DestinationBankName    string
	DestinationAccountName string
	Routing                gateway.Routing
}

// Service routes external transfers through the orchestrator with a
// gateway-backed settler.
type Service struct {
	processor *processor.Service
	ledger    ledger.Client
	gateway   gateway.Client
	logger    *slog.Logger
}

// NewService creates an external transfer adapter.
func NewService(proc *processor.Service, ledgerClient ledger.Client, gatewayClient gateway.Client, logger *slog.Logger) *Service {
	return &Service{
		processor: proc,
		ledger:    ledgerClient,
		gateway:   gatewayClient,
		logger:    logger.With("component", "transfer"),
	}
}

// Process validates the rail-specific bounds and runs the orchestrator with
// the gateway settler. The gateway's transaction id (or error message) ends
// up in the record's metadata.
func (s *Service) Process(ctx context.Context, req Request) (*processor.Result, error) {
	amount, err := money.New(req.Amount, currencyOrDefault(req.Currency))
	if err != nil {
		return nil, err
	}
	if err := validateBounds(amount, req.Routing); err != nil {
		return nil, err
	}

	req.Request.Type = transaction.TypeTransfer
	settler := &gatewaySettler{
		ledger:  s.ledger,
		gateway: s.gateway,
		req:     req,
		logger:  s.logger,
	}
	return s.processor.ProcessWith(ctx, req.Request, settler)
}

func validateBounds(amount money.Money, routing gateway.Routing) error {
	if routing == gateway.RoutingRTGS {
		if amount.Amount() < minRTGSAmount {
			return fmt.Errorf("%w: RTGS transfers require at least ₦%d", ErrAmountOutOfBounds, minRTGSAmount/100)
		}
		return nil
	}
	if amount.Amount() < minExternalAmount || amount.Amount() > maxExternalAmount {
		return fmt.Errorf("%w: amount %s outside ₦%d–₦%d", ErrAmountOutOfBounds,
			amount, minExternalAmount/100, maxExternalAmount/100)
	}
	return nil
}

func currencyOrDefault(c money.Code) money.Code {
	if c == "" {
		return money.DefaultCode
	}
	return c
}

// gatewaySettler debits the source account on the internal ledger, then
// pushes the credit leg to the destination bank through the gateway.
type gatewaySettler struct {
	ledger  ledger.Client
	gateway gateway.Client
	req     Request
	logger  *slog.Logger
}

func (s *gatewaySettler) Settle(ctx context.Context, tx *transaction.Transaction, total money.Money) error {
	tx.SetDestinationBank(s.req.DestinationBankCode, s.req.DestinationBankName, s.req.DestinationAccountName)

	if err := s.ledger.Debit(ctx, tx.AccountNumber, total, tx.Reference, tx.Description, tx.Type); err != nil {
		return err
	}

	resp, err := s.gateway.ProcessTransfer(ctx, gateway.TransferRequest{
		SourceAccount:      tx.AccountNumber,
		DestinationBank:    s.req.DestinationBankCode,
		DestinationAccount: tx.ReceiverAccountNumber,
		DestinationName:    s.req.DestinationAccountName,
		Amount:             tx.Amount,
		Reference:          tx.Reference,
		Routing:            s.req.Routing,
	})
	if err != nil {
		tx.SetGatewayResult("", err.Error())
		return err
	}
	if !resp.Success {
		tx.SetGatewayResult(resp.GatewayTransactionID, resp.ErrorMessage)
		return fmt.Errorf("%w: %s", ErrGatewayDeclined, resp.ErrorMessage)
	}

	tx.SetGatewayResult(resp.GatewayTransactionID, "")
	s.logger.Info("gateway transfer accepted",
		"reference", tx.Reference, "gatewayTransactionID", resp.GatewayTransactionID)
	return nil
}
