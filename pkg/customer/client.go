// Package customer defines the boundary with the external customer and
// compliance service, which owns KYC records and AML watchlists.
package customer

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the customer service cannot be reached.
var ErrUnavailable = errors.New("customer service unavailable")

// KYC verification levels.
const (
	KYCLevelBasic    = "BASIC"
	KYCLevelStandard = "STANDARD"
	KYCLevelEnhanced = "ENHANCED"
)

// KYCStatus is a customer's identity-verification state.
type KYCStatus struct {
	CustomerID string
	Verified   bool
	Level      string
}

// AMLStatus is a customer's anti-money-laundering screening state.
type AMLStatus struct {
	CustomerID  string
	Blocklisted bool
	RiskRating  string
}

// Client is the outbound interface to the customer/compliance service.
type Client interface {
	GetKYCStatus(ctx context.Context, customerID string) (*KYCStatus, error)
	GetAMLStatus(ctx context.Context, customerID string) (*AMLStatus, error)
}
