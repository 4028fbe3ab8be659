// Package cli consolidates the initialization shared by cmd/budgetd,
// cmd/payday-worker, and cmd/notify-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/amqp"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/config"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/storage"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger under the given component and
// installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.Config{Component: component})
	log.SetDefault(logger)
	return logger
}

// MustConfig loads configuration and validates it, exiting the process
// on validation failure.
func MustConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// MustStorage opens the SQLite repository and runs migrations, exiting
// the process on failure.
func MustStorage(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// DialBroker connects to the AMQP broker when one is configured.
// Returns nil when the URL is unset or the broker is unreachable; the
// callers treat a nil client as delivery disabled.
func DialBroker(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL unset, notification delivery disabled")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, notification delivery disabled", "error", err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
