// Package gateway defines the boundary with the external payment gateway
// used for interbank transfers.
package gateway

import (
	"context"
	"errors"

	"github.com/obiora/bankcore/pkg/money"
)

// ErrUnavailable is returned when the gateway cannot be reached.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Routing selects the interbank rail.
type Routing string

// Interbank rails.
const (
	RoutingNIP  Routing = "NIP"  // instant-payment rail
	RoutingRTGS Routing = "RTGS" // high-value settlement rail
)

// TransferRequest is an outbound interbank movement.
type TransferRequest struct {
	SourceAccount      string
	DestinationBank    string
	DestinationAccount string
	DestinationName    string
	Amount             money.Money
	Reference          string
	Routing            Routing
}

// TransferResponse is the gateway's acknowledgement.
type TransferResponse struct {
	Success              bool
	GatewayTransactionID string
	ErrorMessage         string
}

// Client is the outbound interface to the payment gateway.
type Client interface {
	ProcessTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)
}
