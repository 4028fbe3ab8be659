package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/cli"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting payday-worker")

	cfg := cli.MustConfig(logger)

	repo := cli.MustStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.NotificationPublisher
	if client := cli.DialBroker(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	notifications := services.NewNotificationService(repo, publisher)
	processor := services.NewPaydayProcessor(repo, notifications)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Payday sweep loop starting", "interval", cfg.PaydayInterval.String())
	if err := processor.Run(ctx, cfg.PaydayInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Payday worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Payday worker stopped gracefully")
}
