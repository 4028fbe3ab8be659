package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/cli"
	apphttp "github.com/Garryb057/CS-451-Budget-App-Backend/internal/http"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.MustConfig(logger)

	repo := cli.MustStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The broker is optional: without it notifications are still stored
	// and served by the API, only the push delivery path is skipped.
	var publisher services.NotificationPublisher
	if client := cli.DialBroker(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	transactions := services.NewTransactionService(repo)
	budgets := services.NewBudgetService(repo, transactions)
	srv := apphttp.NewServer(cfg.Port, cfg.ForecastMonths, logger, apphttp.Services{
		Incomes:       services.NewIncomeService(repo, budgets),
		Transactions:  transactions,
		Budgets:       budgets,
		Notifications: services.NewNotificationService(repo, publisher),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budgetd server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
