package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/money"
)

// Model is the gorm persistence shape of a transaction record.
//
// Reference and IdempotencyKey carry unique indexes; (Status, CreatedAt) is
// indexed for the sweeper queries.
type Model struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reference             string    `gorm:"uniqueIndex;not null"`
	IdempotencyKey        string    `gorm:"uniqueIndex;not null"`
	AccountNumber         string    `gorm:"index;not null"`
	ReceiverAccountNumber string
	CustomerID            string
	Amount                int64 `gorm:"not null"`
	Fee                   int64
	BalanceAfter          *int64
	Currency              string `gorm:"size:3;not null"`
	Type                  string `gorm:"size:20;not null"`
	Channel               string `gorm:"size:20;not null"`
	Direction             string `gorm:"size:10;not null"`
	ParentID              *uuid.UUID
	Status                string               `gorm:"size:20;not null;index:idx_transactions_status_created,priority:1"`
	Description           string
	Metadata              transaction.Metadata `gorm:"serializer:json"`
	CreatedAt             time.Time            `gorm:"index:idx_transactions_status_created,priority:2"`
	UpdatedAt             time.Time
	ProcessedAt           *time.Time
}

// TableName pins the table name.
func (Model) TableName() string { return "transactions" }

func toModel(tx *transaction.Transaction) *Model {
	m := &Model{
		ID:                    tx.ID,
		Reference:             tx.Reference,
		IdempotencyKey:        tx.IdempotencyKey,
		AccountNumber:         tx.AccountNumber,
		ReceiverAccountNumber: tx.ReceiverAccountNumber,
		CustomerID:            tx.CustomerID,
		Amount:                tx.Amount.Amount(),
		Fee:                   tx.Fee.Amount(),
		Currency:              tx.Amount.Currency().String(),
		Type:                  string(tx.Type),
		Channel:               string(tx.Channel),
		Direction:             string(tx.Direction),
		ParentID:              tx.ParentID,
		Status:                string(tx.Status),
		Description:           tx.Description,
		Metadata:              tx.Metadata,
		CreatedAt:             tx.CreatedAt,
		ProcessedAt:           tx.ProcessedAt,
	}
	if tx.BalanceAfter != nil {
		amount := tx.BalanceAfter.Amount()
		m.BalanceAfter = &amount
	}
	return m
}

func toDomain(m *Model) (*transaction.Transaction, error) {
	currency := money.Code(m.Currency)
	amount, err := money.NewFromSmallestUnit(m.Amount, currency)
	if err != nil {
		return nil, err
	}
	fee, err := money.NewFromSmallestUnit(m.Fee, currency)
	if err != nil {
		return nil, err
	}
	tx := &transaction.Transaction{
		ID:                    m.ID,
		Reference:             m.Reference,
		IdempotencyKey:        m.IdempotencyKey,
		AccountNumber:         m.AccountNumber,
		ReceiverAccountNumber: m.ReceiverAccountNumber,
		CustomerID:            m.CustomerID,
		Amount:                amount,
		Fee:                   fee,
		Type:                  transaction.Type(m.Type),
		Channel:               transaction.Channel(m.Channel),
		Direction:             transaction.Direction(m.Direction),
		ParentID:              m.ParentID,
		Status:                transaction.Status(m.Status),
		Description:           m.Description,
		Metadata:              m.Metadata,
		CreatedAt:             m.CreatedAt,
		ProcessedAt:           m.ProcessedAt,
	}
	if m.BalanceAfter != nil {
		balance, err := money.NewFromSmallestUnit(*m.BalanceAfter, currency)
		if err != nil {
			return nil, err
		}
		tx.BalanceAfter = &balance
	}
	return tx, nil
}
