// Package mocks provides testify mocks for the external collaborators of the
// transaction core.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/obiora/bankcore/pkg/customer"
	"github.com/obiora/bankcore/pkg/domain/events"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/eventbus"
	"github.com/obiora/bankcore/pkg/gateway"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
	txrepo "github.com/obiora/bankcore/pkg/repository/transaction"
)

// LedgerClient is a testify mock for ledger.Client.
type LedgerClient struct {
	mock.Mock
}

func (m *LedgerClient) ValidateLimits(ctx context.Context, accountNumber string, amount money.Money, txType transaction.Type, channel transaction.Channel) error {
	args := m.Called(ctx, accountNumber, amount, txType, channel)
	return args.Error(0)
}

func (m *LedgerClient) Debit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error {
	args := m.Called(ctx, accountNumber, amount, reference, description, txType)
	return args.Error(0)
}

func (m *LedgerClient) Credit(ctx context.Context, accountNumber string, amount money.Money, reference, description string, txType transaction.Type) error {
	args := m.Called(ctx, accountNumber, amount, reference, description, txType)
	return args.Error(0)
}

func (m *LedgerClient) Hold(ctx context.Context, accountNumber string, amount money.Money, reference, reason string) (*ledger.Hold, error) {
	args := m.Called(ctx, accountNumber, amount, reference, reason)
	if hold := args.Get(0); hold != nil {
		return hold.(*ledger.Hold), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerClient) Release(ctx context.Context, accountNumber, holdID, reference, reason string) error {
	args := m.Called(ctx, accountNumber, holdID, reference, reason)
	return args.Error(0)
}

func (m *LedgerClient) GetBalance(ctx context.Context, accountNumber string) (*ledger.Balance, error) {
	args := m.Called(ctx, accountNumber)
	if balance := args.Get(0); balance != nil {
		return balance.(*ledger.Balance), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ ledger.Client = (*LedgerClient)(nil)

// CustomerClient is a testify mock for customer.Client.
type CustomerClient struct {
	mock.Mock
}

func (m *CustomerClient) GetKYCStatus(ctx context.Context, customerID string) (*customer.KYCStatus, error) {
	args := m.Called(ctx, customerID)
	if status := args.Get(0); status != nil {
		return status.(*customer.KYCStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CustomerClient) GetAMLStatus(ctx context.Context, customerID string) (*customer.AMLStatus, error) {
	args := m.Called(ctx, customerID)
	if status := args.Get(0); status != nil {
		return status.(*customer.AMLStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ customer.Client = (*CustomerClient)(nil)

// GatewayClient is a testify mock for gateway.Client.
type GatewayClient struct {
	mock.Mock
}

func (m *GatewayClient) ProcessTransfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*gateway.TransferResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ gateway.Client = (*GatewayClient)(nil)

// PINVerifier is a testify mock for security.PINVerifier.
type PINVerifier struct {
	mock.Mock
}

func (m *PINVerifier) VerifyPIN(ctx context.Context, accountNumber, pin string) (bool, error) {
	args := m.Called(ctx, accountNumber, pin)
	return args.Bool(0), args.Error(1)
}

// OTPVerifier is a testify mock for security.OTPVerifier.
type OTPVerifier struct {
	mock.Mock
}

func (m *OTPVerifier) VerifyOTP(ctx context.Context, accountNumber, otp string) (bool, error) {
	args := m.Called(ctx, accountNumber, otp)
	return args.Bool(0), args.Error(1)
}

// Bus is a testify mock for eventbus.Bus.
type Bus struct {
	mock.Mock
}

func (m *Bus) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *Bus) Register(eventType string, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

var _ eventbus.Bus = (*Bus)(nil)

// TransactionRepository is a testify mock for the transaction store.
type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if tx := args.Get(0); tx != nil {
		return tx.(*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	args := m.Called(ctx, reference)
	if tx := args.Get(0); tx != nil {
		return tx.(*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	args := m.Called(ctx, key)
	if tx := args.Get(0); tx != nil {
		return tx.(*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) ListRetryable(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, olderThan, limit)
	if txs := args.Get(0); txs != nil {
		return txs.([]*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, olderThan, limit)
	if txs := args.Get(0); txs != nil {
		return txs.([]*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to transaction.Status) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

var _ txrepo.Repository = (*TransactionRepository)(nil)
