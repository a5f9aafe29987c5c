// Package transaction defines the authoritative local record of a ledger
// movement and its status lifecycle.
//
// The record acts as an aggregate root: status changes go through
// TransitionTo, which enforces the lifecycle state machine, and retry
// bookkeeping goes through typed metadata accessors rather than ad-hoc
// string manipulation.
package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/obiora/bankcore/pkg/money"
)

// Type classifies the business intent of a transaction.
type Type string

// Transaction types.
const (
	TypeTransfer    Type = "TRANSFER"
	TypeWithdrawal  Type = "WITHDRAWAL"
	TypeDeposit     Type = "DEPOSIT"
	TypeBillPayment Type = "BILL_PAYMENT"
	TypeFee         Type = "FEE"
	TypeRefund      Type = "REFUND"
	TypeInterest    Type = "INTEREST"
	TypeAdjustment  Type = "ADJUSTMENT"
	TypeCashback    Type = "CASHBACK"
	TypeReversal    Type = "REVERSAL"
)

// IsValid reports whether t is a known transaction type.
func (t Type) IsValid() bool {
	switch t {
	case TypeTransfer, TypeWithdrawal, TypeDeposit, TypeBillPayment, TypeFee,
		TypeRefund, TypeInterest, TypeAdjustment, TypeCashback, TypeReversal:
		return true
	}
	return false
}

// Direction returns the default money-movement direction for the type.
func (t Type) Direction() Direction {
	switch t {
	case TypeTransfer, TypeWithdrawal, TypeBillPayment, TypeFee:
		return DirectionDebit
	default:
		return DirectionCredit
	}
}

// Channel identifies the origination channel of a transaction.
type Channel string

// Origination channels.
const (
	ChannelATM       Channel = "ATM"
	ChannelPOS       Channel = "POS"
	ChannelUSSD      Channel = "USSD"
	ChannelMobileApp Channel = "MOBILE_APP"
	ChannelWebApp    Channel = "WEB_APP"
	ChannelAPI       Channel = "API"
	ChannelBranch    Channel = "BRANCH"
	ChannelAgent     Channel = "AGENT"
	ChannelSystem    Channel = "SYSTEM"
	ChannelAdmin     Channel = "ADMIN"
)

// IsValid reports whether c is a known channel.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelATM, ChannelPOS, ChannelUSSD, ChannelMobileApp, ChannelWebApp,
		ChannelAPI, ChannelBranch, ChannelAgent, ChannelSystem, ChannelAdmin:
		return true
	}
	return false
}

// Direction is the side of the ledger a transaction moves money on.
type Direction string

// Movement directions.
const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// Transaction is the ledger-intent record.
//
// Invariants:
//   - Reference and IdempotencyKey are globally unique.
//   - Amount is strictly positive.
//   - Status transitions follow the lifecycle state machine exactly.
//   - BalanceAfter is non-nil iff Status is StatusSuccess.
type Transaction struct {
	ID                    uuid.UUID
	Reference             string
	IdempotencyKey        string
	AccountNumber         string
	ReceiverAccountNumber string // transfers only
	CustomerID            string
	Amount                money.Money
	Fee                   money.Money
	BalanceAfter          *money.Money
	Type                  Type
	Channel               Channel
	Direction             Direction
	ParentID              *uuid.UUID // set on reversals, points to the original
	Status                Status
	Description           string
	Metadata              Metadata
	CreatedAt             time.Time
	ProcessedAt           *time.Time
}

// IsReversal reports whether the record compensates another transaction.
func (t *Transaction) IsReversal() bool {
	return t.Type == TypeReversal && t.ParentID != nil
}

// MarkProcessed stamps the processing completion time.
func (t *Transaction) MarkProcessed(at time.Time) {
	t.ProcessedAt = &at
}

// Builder provides a fluent API for constructing Transaction records.
type Builder struct {
	tx  Transaction
	err error
}

// New creates a Builder with a fresh ID, generated reference and creation time.
func New() *Builder {
	id := uuid.New()
	return &Builder{tx: Transaction{
		ID:        id,
		Reference: "TXN-" + id.String(),
		Status:    StatusPending,
		Metadata:  Metadata{},
		CreatedAt: time.Now(),
	}}
}

// WithReference overrides the generated caller-visible reference.
func (b *Builder) WithReference(ref string) *Builder {
	b.tx.Reference = ref
	return b
}

// WithIdempotencyKey sets the dedup key. Mandatory.
func (b *Builder) WithIdempotencyKey(key string) *Builder {
	b.tx.IdempotencyKey = key
	return b
}

// WithAccount sets the source account number. Mandatory.
func (b *Builder) WithAccount(accountNumber string) *Builder {
	b.tx.AccountNumber = accountNumber
	return b
}

// WithReceiver sets the receiving account number (transfers only).
func (b *Builder) WithReceiver(accountNumber string) *Builder {
	b.tx.ReceiverAccountNumber = accountNumber
	return b
}

// WithCustomer sets the owning customer id.
func (b *Builder) WithCustomer(customerID string) *Builder {
	b.tx.CustomerID = customerID
	return b
}

// WithAmount sets the transaction value. Mandatory, must be positive.
func (b *Builder) WithAmount(amount money.Money) *Builder {
	b.tx.Amount = amount
	return b
}

// WithFee sets the computed fee.
func (b *Builder) WithFee(fee money.Money) *Builder {
	b.tx.Fee = fee
	return b
}

// WithType sets the transaction type and its default direction.
func (b *Builder) WithType(t Type) *Builder {
	b.tx.Type = t
	b.tx.Direction = t.Direction()
	return b
}

// WithChannel sets the origination channel.
func (b *Builder) WithChannel(c Channel) *Builder {
	b.tx.Channel = c
	return b
}

// WithDirection overrides the type's default direction.
func (b *Builder) WithDirection(d Direction) *Builder {
	b.tx.Direction = d
	return b
}

// WithParent links a compensating transaction to its original.
func (b *Builder) WithParent(id uuid.UUID) *Builder {
	b.tx.ParentID = &id
	return b
}

// WithDescription sets the human-readable narration.
func (b *Builder) WithDescription(desc string) *Builder {
	b.tx.Description = desc
	return b
}

// Build validates invariants and returns the record.
func (b *Builder) Build() (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.tx.Amount.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	if !b.tx.Type.IsValid() {
		return nil, ErrInvalidType
	}
	if !b.tx.Channel.IsValid() {
		return nil, ErrInvalidChannel
	}
	if b.tx.IdempotencyKey == "" {
		return nil, ErrMissingIdempotencyKey
	}
	if b.tx.AccountNumber == "" {
		return nil, ErrMissingAccount
	}
	if b.tx.Type == TypeTransfer && b.tx.ReceiverAccountNumber == "" {
		return nil, ErrMissingReceiver
	}
	if b.tx.Fee.Currency() == "" {
		b.tx.Fee = money.Zero(b.tx.Amount.Currency())
	}
	tx := b.tx
	return &tx, nil
}
