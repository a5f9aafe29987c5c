package compliance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obiora/bankcore/internal/fixtures/mocks"
	"github.com/obiora/bankcore/pkg/compliance"
	"github.com/obiora/bankcore/pkg/customer"
	"github.com/obiora/bankcore/pkg/domain/check"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func complianceTx(t *testing.T, amount money.Money) *transaction.Transaction {
	t.Helper()
	tx, err := transaction.New().
		WithIdempotencyKey("idem").
		WithAccount("0123456789").
		WithCustomer("cust-1").
		WithAmount(amount).
		WithType(transaction.TypeWithdrawal).
		WithChannel(transaction.ChannelMobileApp).
		Build()
	require.NoError(t, err)
	return tx
}

func cleanCustomer(customers *mocks.CustomerClient) {
	customers.On("GetKYCStatus", mock.Anything, "cust-1").
		Return(&customer.KYCStatus{CustomerID: "cust-1", Verified: true, Level: customer.KYCLevelStandard}, nil)
	customers.On("GetAMLStatus", mock.Anything, "cust-1").
		Return(&customer.AMLStatus{CustomerID: "cust-1", Blocklisted: false, RiskRating: "LOW"}, nil)
}

func codes(report check.Report) []string {
	var out []string
	for _, r := range report.Results {
		if r.Code != "" {
			out = append(out, r.Code)
		}
	}
	return out
}

func TestCheck_CleanTransactionPasses(t *testing.T) {
	customers := new(mocks.CustomerClient)
	cleanCustomer(customers)
	svc := compliance.NewService(customers, money.NGN, discardLogger())

	report := svc.Check(context.Background(), complianceTx(t, money.Must(250_000, money.NGN)))

	_, blocked := report.Blocked()
	assert.False(t, blocked)
	assert.Empty(t, report.Warnings())
}

func TestCheck_AMLThresholdBoundaries(t *testing.T) {
	customers := new(mocks.CustomerClient)
	cleanCustomer(customers)
	svc := compliance.NewService(customers, money.NGN, discardLogger())

	// Exactly ₦500,000 does not warn; the threshold is strictly greater-than.
	report := svc.Check(context.Background(), complianceTx(t, money.Must(500_000, money.NGN)))
	assert.Empty(t, report.Warnings())

	// One kobo over warns.
	over, err := money.NewFromSmallestUnit(500_000_01, money.NGN)
	require.NoError(t, err)
	report = svc.Check(context.Background(), complianceTx(t, over))
	assert.Contains(t, codes(report), compliance.CodeAMLLargeAmount)
	_, blocked := report.Blocked()
	assert.False(t, blocked)

	// Over ₦1,000,000 blocks.
	report = svc.Check(context.Background(), complianceTx(t, money.Must(1_000_001, money.NGN)))
	result, blocked := report.Blocked()
	require.True(t, blocked)
	assert.Equal(t, compliance.CodeAMLSuspicious, result.Code)
}

func TestCheck_BlocklistedCustomerBlocks(t *testing.T) {
	customers := new(mocks.CustomerClient)
	customers.On("GetKYCStatus", mock.Anything, "cust-1").
		Return(&customer.KYCStatus{CustomerID: "cust-1", Verified: true, Level: customer.KYCLevelEnhanced}, nil)
	customers.On("GetAMLStatus", mock.Anything, "cust-1").
		Return(&customer.AMLStatus{CustomerID: "cust-1", Blocklisted: true, RiskRating: "HIGH"}, nil)
	svc := compliance.NewService(customers, money.NGN, discardLogger())

	report := svc.Check(context.Background(), complianceTx(t, money.Must(1_000, money.NGN)))

	result, blocked := report.Blocked()
	require.True(t, blocked)
	assert.Equal(t, compliance.CodeAMLBlocklisted, result.Code)
}

func TestCheck_KYC(t *testing.T) {
	t.Run("unverified customer blocks", func(t *testing.T) {
		customers := new(mocks.CustomerClient)
		customers.On("GetKYCStatus", mock.Anything, "cust-1").
			Return(&customer.KYCStatus{CustomerID: "cust-1", Verified: false}, nil)
		customers.On("GetAMLStatus", mock.Anything, "cust-1").
			Return(&customer.AMLStatus{CustomerID: "cust-1"}, nil)
		svc := compliance.NewService(customers, money.NGN, discardLogger())

		report := svc.Check(context.Background(), complianceTx(t, money.Must(1_000, money.NGN)))

		result, blocked := report.Blocked()
		require.True(t, blocked)
		assert.Equal(t, compliance.CodeKYCNotVerified, result.Code)
	})

	t.Run("basic tier warns", func(t *testing.T) {
		customers := new(mocks.CustomerClient)
		customers.On("GetKYCStatus", mock.Anything, "cust-1").
			Return(&customer.KYCStatus{CustomerID: "cust-1", Verified: true, Level: customer.KYCLevelBasic}, nil)
		customers.On("GetAMLStatus", mock.Anything, "cust-1").
			Return(&customer.AMLStatus{CustomerID: "cust-1"}, nil)
		svc := compliance.NewService(customers, money.NGN, discardLogger())

		report := svc.Check(context.Background(), complianceTx(t, money.Must(1_000, money.NGN)))

		_, blocked := report.Blocked()
		assert.False(t, blocked)
		assert.Contains(t, codes(report), compliance.CodeKYCBasicTier)
	})
}

func TestCheck_RegulatoryWarnings(t *testing.T) {
	customers := new(mocks.CustomerClient)
	cleanCustomer(customers)
	svc := compliance.NewService(customers, money.NGN, discardLogger())

	// Above the reporting threshold the AML failure also fires; the
	// regulatory signal must still be present alongside it.
	report := svc.Check(context.Background(), complianceTx(t, money.Must(15_000_000, money.NGN)))
	assert.Contains(t, codes(report), compliance.CodeRegulatoryLarge)

	// Foreign-currency transactions warn but do not block.
	report = svc.Check(context.Background(), complianceTx(t, money.Must(100, money.USD)))
	assert.Contains(t, codes(report), compliance.CodeForeignCurrency)
	_, blocked := report.Blocked()
	assert.False(t, blocked)
}

func TestCheck_CustomerServiceUnavailableBlocks(t *testing.T) {
	customers := new(mocks.CustomerClient)
	customers.On("GetKYCStatus", mock.Anything, "cust-1").
		Return(nil, errors.New("connection refused"))
	customers.On("GetAMLStatus", mock.Anything, "cust-1").
		Return(nil, errors.New("connection refused"))
	svc := compliance.NewService(customers, money.NGN, discardLogger())

	report := svc.Check(context.Background(), complianceTx(t, money.Must(1_000, money.NGN)))

	result, blocked := report.Blocked()
	require.True(t, blocked)
	assert.Equal(t, compliance.CodeKYCUnavailable, result.Code)
}
