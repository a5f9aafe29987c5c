package config

import (
	"log/slog"

	"github.com/obiora/bankcore/pkg/customer"
	"github.com/obiora/bankcore/pkg/eventbus"
	"github.com/obiora/bankcore/pkg/gateway"
	"github.com/obiora/bankcore/pkg/ledger"
	txrepo "github.com/obiora/bankcore/pkg/repository/transaction"
	"github.com/obiora/bankcore/pkg/security"
)

// Deps holds all infrastructure dependencies for building the services.
type Deps struct {
	Repo         txrepo.Repository
	Ledger       ledger.Client
	Customers    customer.Client
	Gateway      gateway.Client
	PINVerifier  security.PINVerifier
	OTPVerifier  security.OTPVerifier
	LockoutStore security.LockoutStore
	EventBus     eventbus.Bus
	Logger       *slog.Logger
	Config       *App
}
