package initializer

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/obiora/bankcore/pkg/config"
)

// SetupLogger builds the application logger and installs it as the slog
// default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	formattersMap := map[string]log.Formatter{
		"json": log.JSONFormatter,
		"text": log.TextFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formattersMap[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
