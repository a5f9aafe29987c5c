// Package security gates transactions on PIN/OTP verification, brute-force
// lockout and fraud heuristics.
//
// PIN and OTP verification is delegated to external services; this package
// owns the lockout policy (three consecutive PIN failures lock the account
// for fifteen minutes) and the advisory fraud checks.
package security

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obiora/bankcore/pkg/domain/check"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

// Lockout policy.
const (
	MaxPINAttempts = 3
	LockoutWindow  = 15 * time.Minute
)

// highValueThreshold is the amount above which 2FA is mandatory, in kobo.
const highValueThreshold money.Amount = 100_000_00 // ₦100,000

// roundAmountUnit flags round-number amounts (multiples of ₦1,000), in kobo.
const roundAmountUnit money.Amount = 1_000_00

// Result codes.
const (
	CodeAccountLocked   = "ACCOUNT_LOCKED"
	CodePINInvalid      = "PIN_INVALID"
	CodePINRequired     = "PIN_REQUIRED"
	CodeOTPInvalid      = "OTP_INVALID"
	CodeOTPRequired     = "OTP_REQUIRED"
	CodeVerifierError   = "VERIFIER_UNAVAILABLE"
	CodeRoundAmount     = "FRAUD_ROUND_AMOUNT"
	CodeOffHours        = "FRAUD_OFF_HOURS"
	CodeLocationAnomaly = "FRAUD_LOCATION_ANOMALY"
	CodeDeviceAnomaly   = "FRAUD_DEVICE_ANOMALY"
)

// PINVerifier delegates PIN checks to the external PIN service.
type PINVerifier interface {
	VerifyPIN(ctx context.Context, accountNumber, pin string) (bool, error)
}

// OTPVerifier delegates one-time-code checks to the external OTP service.
type OTPVerifier interface {
	VerifyOTP(ctx context.Context, accountNumber, otp string) (bool, error)
}

// LockoutStore tracks consecutive PIN failures per account with TTL expiry.
// Entries expire on their own after the lockout window elapses.
type LockoutStore interface {
	// Failures returns the current consecutive-failure count for the account.
	Failures(ctx context.Context, accountNumber string) (int, error)

	// RecordFailure increments the failure count, resetting the expiry
	// window, and returns the new count.
	RecordFailure(ctx context.Context, accountNumber string, window time.Duration) (int, error)

	// Reset clears the failure count after a successful verification.
	Reset(ctx context.Context, accountNumber string) error
}

// Credentials are the caller-supplied second factors on a request.
type Credentials struct {
	PIN string
	OTP string
}

// Service runs the security gate.
type Service struct {
	pins    PINVerifier
	otps    OTPVerifier
	lockout LockoutStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a security gate.
func NewService(pins PINVerifier, otps OTPVerifier, lockout LockoutStore, logger *slog.Logger) *Service {
	return &Service{
		pins:    pins,
		otps:    otps,
		lockout: lockout,
		logger:  logger.With("component", "security"),
		now:     time.Now,
	}
}

// Authorize verifies the caller's credentials against the transaction and
// collects advisory fraud signals. High-value transactions require both PIN
// and OTP; the absence of either is a failure, never a silent skip.
func (s *Service) Authorize(ctx context.Context, tx *transaction.Transaction, creds Credentials) check.Report {
	var report check.Report

	locked, err := s.isLocked(ctx, tx.AccountNumber)
	if err != nil {
		report.Append(check.Fail(CodeVerifierError, fmt.Sprintf("lockout lookup failed: %v", err)))
		return report
	}
	if locked {
		report.Append(check.Fail(CodeAccountLocked,
			fmt.Sprintf("account locked after %d failed PIN attempts", MaxPINAttempts)))
		return report
	}

	highValue := tx.Amount.Amount() > highValueThreshold
	if highValue {
		report.Append(s.verifyTwoFactor(ctx, tx.AccountNumber, creds))
	} else if creds.PIN != "" {
		report.Append(s.verifyPIN(ctx, tx.AccountNumber, creds.PIN))
	}

	report.Append(s.fraudHeuristics(tx)...)
	return report
}

// isLocked reports whether the account has reached the failure cap. The
// store's TTL expiry clears the counter once the lockout window elapses.
func (s *Service) isLocked(ctx context.Context, accountNumber string) (bool, error) {
	failures, err := s.lockout.Failures(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	return failures >= MaxPINAttempts, nil
}

// verifyTwoFactor requires both PIN and OTP to pass.
func (s *Service) verifyTwoFactor(ctx context.Context, accountNumber string, creds Credentials) check.Result {
	if creds.PIN == "" {
		return check.Fail(CodePINRequired, "PIN is required for high-value transactions")
	}
	if creds.OTP == "" {
		return check.Fail(CodeOTPRequired, "OTP is required for high-value transactions")
	}
	if r := s.verifyPIN(ctx, accountNumber, creds.PIN); r.Blocked() {
		return r
	}
	return s.verifyOTP(ctx, accountNumber, creds.OTP)
}

func (s *Service) verifyPIN(ctx context.Context, accountNumber, pin string) check.Result {
	ok, err := s.pins.VerifyPIN(ctx, accountNumber, pin)
	if err != nil {
		return check.Fail(CodeVerifierError, fmt.Sprintf("PIN verification failed: %v", err))
	}
	if !ok {
		failures, recErr := s.lockout.RecordFailure(ctx, accountNumber, LockoutWindow)
		if recErr != nil {
			s.logger.Error("failed to record PIN failure", "account", accountNumber, "error", recErr)
		}
		if failures >= MaxPINAttempts {
			return check.Fail(CodeAccountLocked,
				fmt.Sprintf("account locked for %s after %d failed PIN attempts", LockoutWindow, failures))
		}
		return check.Fail(CodePINInvalid, "incorrect PIN")
	}
	if err := s.lockout.Reset(ctx, accountNumber); err != nil {
		s.logger.Error("failed to reset lockout counter", "account", accountNumber, "error", err)
	}
	return check.Pass()
}

func (s *Service) verifyOTP(ctx context.Context, accountNumber, otp string) check.Result {
	ok, err := s.otps.VerifyOTP(ctx, accountNumber, otp)
	if err != nil {
		return check.Fail(CodeVerifierError, fmt.Sprintf("OTP verification failed: %v", err))
	}
	if !ok {
		return check.Fail(CodeOTPInvalid, "incorrect OTP")
	}
	return check.Pass()
}

// fraudHeuristics collects advisory signals. These never block.
func (s *Service) fraudHeuristics(tx *transaction.Transaction) []check.Result {
	var results []check.Result

	if tx.Amount.Amount()%roundAmountUnit == 0 {
		results = append(results, check.Warn(CodeRoundAmount,
			fmt.Sprintf("round-number amount %s", tx.Amount)))
	}

	hour := s.now().Hour()
	if hour < 6 || hour >= 22 {
		results = append(results, check.Warn(CodeOffHours,
			fmt.Sprintf("transaction initiated off-hours at %02d:00", hour)))
	}

	// Location and device anomaly detection hook into the fraud pipeline
	// once signals are available on the request.
	results = append(results, s.checkLocationAnomaly(tx), s.checkDeviceAnomaly(tx))

	flagged := results[:0]
	for _, r := range results {
		if r.Outcome != check.Passed {
			flagged = append(flagged, r)
		}
	}
	return flagged
}

func (s *Service) checkLocationAnomaly(_ *transaction.Transaction) check.Result {
	return check.Pass()
}

func (s *Service) checkDeviceAnomaly(_ *transaction.Transaction) check.Result {
	return check.Pass()
}
