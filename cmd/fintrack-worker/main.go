package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/mail"
	"fintrack/internal/scheduler"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	loggerCfg := log.DefaultConfig()
	loggerCfg.Component = log.ComponentWorker
	logger := log.New(loggerCfg)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	mailCfg := mail.ChainConfig{
		SendGridAPIKey: cfg.SendGridAPIKey,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUsername:   cfg.SMTPUsername,
		SMTPPassword:   cfg.SMTPPassword,
		From:           cfg.EmailFrom,
		AttemptTimeout: cfg.MailTimeout,
	}

	notifier := services.NewNotifier(store, store, mailCfg)
	budgetSvc := services.NewBudgetService(store, store, notifier)
	checkWorker := worker.NewCheckWorker(budgetSvc, cfg.BudgetCheckTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// Recurring budgets get swept daily so a window that rolls over without
	// new spending still produces its alert.
	sweeper := scheduler.NewBudgetSweeper(store, budgetSvc, cfg.BudgetSweepSpec, 5*time.Minute)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start budget sweeper", log.FieldError, err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		group.Go(func() error {
			return client.ConsumeBudgetChecks(groupCtx, checkWorker.HandleBudgetCheck)
		})
		logger.Info("Worker consuming budget checks", "queue", cfg.AMQPQueue)
	} else {
		logger.Warn("AMQP_URL not set, running sweep-only")
	}

	logger.Info("Worker started", "sweep", cfg.BudgetSweepSpec)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
	default:
		return storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	}
}
