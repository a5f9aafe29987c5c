// Package compliance gates transactions on KYC, AML and regulatory rules.
//
// Each check resolves to a tri-state result: the orchestrator blocks only on
// FAILED, surfaces WARNING on the audit trail and proceeds on PASSED.
package compliance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/obiora/bankcore/pkg/customer"
	"github.com/obiora/bankcore/pkg/domain/check"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

// Screening thresholds, in kobo.
const (
	amlWarningThreshold money.Amount = 500_000_00    // ₦500,000
	amlFailureThreshold money.Amount = 1_000_000_00  // ₦1,000,000
	regulatoryThreshold money.Amount = 10_000_000_00 // ₦10,000,000 central-bank reporting line
)

// Result codes.
const (
	CodeKYCNotVerified  = "KYC_NOT_VERIFIED"
	CodeKYCBasicTier    = "KYC_BASIC_TIER"
	CodeKYCUnavailable  = "KYC_UNAVAILABLE"
	CodeAMLBlocklisted  = "AML_BLOCKLISTED"
	CodeAMLSuspicious   = "AML_SUSPICIOUS_AMOUNT"
	CodeAMLLargeAmount  = "AML_LARGE_AMOUNT"
	CodeAMLUnavailable  = "AML_UNAVAILABLE"
	CodeRegulatoryLarge = "REGULATORY_REPORTING_THRESHOLD"
	CodeForeignCurrency = "REGULATORY_FOREIGN_CURRENCY"
)

// Service runs the compliance gate against the external customer service.
type Service struct {
	customers    customer.Client
	homeCurrency money.Code
	logger       *slog.Logger
}

// NewService creates a compliance gate.
func NewService(customers customer.Client, homeCurrency money.Code, logger *slog.Logger) *Service {
	return &Service{
		customers:    customers,
		homeCurrency: homeCurrency,
		logger:       logger.With("component", "compliance"),
	}
}

// Check runs the three independent checks and aggregates their results.
func (s *Service) Check(ctx context.Context, tx *transaction.Transaction) check.Report {
	var report check.Report
	report.Append(
		s.checkKYC(ctx, tx),
		s.checkAML(ctx, tx),
		s.checkRegulatory(tx),
	)
	for _, r := range report.Results {
		if r.Outcome != check.Passed {
			s.logger.Warn("compliance check flagged transaction",
				"reference", tx.Reference, "outcome", r.Outcome, "code", r.Code)
		}
	}
	return report
}

// checkKYC fails unverified customers and surfaces basic-tier verification
// as a warning without restricting behaviour here.
func (s *Service) checkKYC(ctx context.Context, tx *transaction.Transaction) check.Result {
	status, err := s.customers.GetKYCStatus(ctx, tx.CustomerID)
	if err != nil {
		return check.Fail(CodeKYCUnavailable, fmt.Sprintf("KYC lookup failed: %v", err))
	}
	if !status.Verified {
		return check.Fail(CodeKYCNotVerified, "customer identity is not verified")
	}
	if status.Level == customer.KYCLevelBasic {
		return check.Warn(CodeKYCBasicTier, "customer is on basic KYC tier")
	}
	return check.Pass()
}

// checkAML screens amount patterns and the external blocklist.
func (s *Service) checkAML(ctx context.Context, tx *transaction.Transaction) check.Result {
	status, err := s.customers.GetAMLStatus(ctx, tx.CustomerID)
	if err != nil {
		return check.Fail(CodeAMLUnavailable, fmt.Sprintf("AML lookup failed: %v", err))
	}
	if status.Blocklisted {
		return check.Fail(CodeAMLBlocklisted, "customer is on the AML blocklist")
	}
	if tx.Amount.Amount() > amlFailureThreshold {
		return check.Fail(CodeAMLSuspicious,
			fmt.Sprintf("amount %s exceeds the suspicious-pattern threshold", tx.Amount))
	}
	if tx.Amount.Amount() > amlWarningThreshold {
		return check.Warn(CodeAMLLargeAmount,
			fmt.Sprintf("amount %s exceeds the AML monitoring threshold", tx.Amount))
	}
	return check.Pass()
}

// checkRegulatory surfaces central-bank reporting conditions. Never blocks.
func (s *Service) checkRegulatory(tx *transaction.Transaction) check.Result {
	if tx.Amount.Amount() > regulatoryThreshold {
		return check.Warn(CodeRegulatoryLarge,
			fmt.Sprintf("amount %s is above the central-bank reporting threshold", tx.Amount))
	}
	if tx.Amount.Currency() != s.homeCurrency {
		return check.Warn(CodeForeignCurrency,
			fmt.Sprintf("transaction currency %s differs from home currency %s",
				tx.Amount.Currency(), s.homeCurrency))
	}
	return check.Pass()
}
