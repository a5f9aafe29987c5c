// Package initializer builds the application's infrastructure dependencies
// from configuration.
package initializer

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	infracustomer "github.com/obiora/bankcore/infra/customer"
	infraeventbus "github.com/obiora/bankcore/infra/eventbus"
	infragateway "github.com/obiora/bankcore/infra/gateway"
	infraledger "github.com/obiora/bankcore/infra/ledger"
	"github.com/obiora/bankcore/infra/lockout"
	infratx "github.com/obiora/bankcore/infra/repository/transaction"
	"github.com/obiora/bankcore/infra/verify"
	"github.com/obiora/bankcore/pkg/config"
)

// InitializeDependencies wires all infrastructure from config.
func InitializeDependencies(cfg *config.App) (*config.Deps, error) {
	logger := SetupLogger(&cfg.Log)

	db, err := gorm.Open(postgres.Open(cfg.DB.Url), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infratx.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate transaction store: %w", err)
	}

	bus, err := infraeventbus.NewWithRedis(cfg.Redis.URL, cfg.Redis.Stream, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	lockoutStore, err := lockout.NewRedisStore(cfg.Redis.URL, cfg.Redis.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lockout store: %w", err)
	}

	verifyClient := verify.New(cfg.Verify.BaseURL, cfg.Verify.HTTPTimeout, logger)

	return &config.Deps{
		Repo:         infratx.New(db),
		Ledger:       infraledger.New(cfg.Ledger.BaseURL, cfg.Ledger.HTTPTimeout, logger),
		Customers:    infracustomer.New(cfg.Customer.BaseURL, cfg.Customer.HTTPTimeout, logger),
		Gateway:      infragateway.New(cfg.Gateway.BaseURL, cfg.Gateway.ApiKey, cfg.Gateway.HTTPTimeout, logger),
		PINVerifier:  verifyClient,
		OTPVerifier:  verifyClient,
		LockoutStore: lockoutStore,
		EventBus:     bus,
		Logger:       logger,
		Config:       cfg,
	}, nil
}
