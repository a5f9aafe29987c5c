// Package config loads application configuration from the environment and
// bundles the infrastructure dependencies for wiring.
package config

import "time"

// DB holds database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Redis holds Redis connection settings.
type Redis struct {
	URL       string `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"bankcore:"`
	Stream    string `envconfig:"STREAM" default:"bankcore:transactions"`
}

// Endpoint holds connection settings for an external HTTP collaborator.
type Endpoint struct {
	BaseURL     string        `envconfig:"BASE_URL"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

// Gateway holds payment gateway settings.
type Gateway struct {
	BaseURL     string        `envconfig:"BASE_URL"`
	ApiKey      string        `envconfig:"API_KEY"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
}

// Sweeper holds background recovery cadence settings.
type Sweeper struct {
	RetryInterval    time.Duration `envconfig:"RETRY_INTERVAL" default:"30s"`
	StuckInterval    time.Duration `envconfig:"STUCK_INTERVAL" default:"5m"`
	StuckAfter       time.Duration `envconfig:"STUCK_AFTER" default:"10m"`
	RetriesPerSecond float64       `envconfig:"RETRIES_PER_SECOND" default:"5"`
	BatchSize        int           `envconfig:"BATCH_SIZE" default:"100"`
}

// Log holds logger settings.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[bankcore]"`
}

// App is the top-level application configuration.
type App struct {
	Env          string   `envconfig:"ENV" default:"development"`
	HomeCurrency string   `envconfig:"HOME_CURRENCY" default:"NGN"`
	DB           DB       `envconfig:"DATABASE"`
	Redis        Redis    `envconfig:"REDIS"`
	Ledger       Endpoint `envconfig:"LEDGER"`
	Customer     Endpoint `envconfig:"CUSTOMER"`
	Verify       Endpoint `envconfig:"VERIFY"`
	Gateway      Gateway  `envconfig:"GATEWAY"`
	Sweeper      Sweeper  `envconfig:"SWEEPER"`
	Log          Log      `envconfig:"LOG"`
}
