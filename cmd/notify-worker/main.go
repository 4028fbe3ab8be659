package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/amqp"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/cli"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentNotification)
	logger.Info("Starting notify-worker")

	cfg := cli.MustConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notify worker")
		os.Exit(1)
	}

	repo := cli.MustStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.DialBroker(logger, cfg)
	if amqpClient == nil {
		logger.Error("Failed to initialize AMQP client")
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The queue message carries identifiers only; the database row is
	// the source of truth for what gets delivered.
	handler := func(msg *amqp.NotificationMessage) error {
		n, err := repo.GetNotification(ctx, msg.NotificationID)
		if errors.Is(err, storage.ErrNotFound) {
			// The row was deleted between publish and delivery. Ack and
			// move on, requeueing can never succeed.
			logger.Warn("Notification row missing, dropping message",
				log.FieldNotification, msg.NotificationID,
				log.FieldUserID, msg.UserID)
			return nil
		}
		if err != nil {
			return err
		}

		// A failed stamp is returned so the message is redelivered and
		// the delivery state catches up.
		if err := repo.MarkNotificationDelivered(ctx, n.ID, time.Now().UTC()); err != nil {
			return err
		}

		logger.Info("Notification delivered",
			log.FieldNotification, n.ID,
			log.FieldUserID, n.UserID,
			"kind", n.Kind,
			"title", n.Title,
			"message", n.Message)
		return nil
	}

	logger.Info("Consuming notifications", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeNotifications(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Notify worker stopped gracefully")
}
