package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally loading a .env
// file first. A missing .env file is not an error.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found, using system environment variables")
		}
	} else {
		for _, path := range envFilePath {
			if err := godotenv.Load(path); err != nil {
				logger.Debug("environment file not loaded", "path", path, "error", err)
				continue
			}
			logger.Info("environment loaded from file", "path", path)
			break
		}
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
