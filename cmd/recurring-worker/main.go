// Command recurring-worker runs one recurring generation batch and exits.
// It is meant to be started by cron or a Kubernetes CronJob. The exit code
// is 0 when every attempted template succeeded or was skipped, 2 when some
// templates failed and 1 when the batch could not run at all.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"hubledger/internal/clock"
	"hubledger/internal/config"
	"hubledger/internal/database"
	"hubledger/internal/logger"
	"hubledger/internal/notify"
	"hubledger/internal/services"
)

var errTemplatesFailed = errors.New("some templates failed")

func main() {
	logger.Init(os.Getenv("ENV"))

	err := run()
	logger.Sync()
	switch {
	case err == nil:
	case errors.Is(err, errTemplatesFailed):
		os.Exit(2)
	default:
		logger.Get().Errorf("recurring worker: %v", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			log.Warnw("sentry disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	db := dbManager.DB()
	clk := clock.Real{}
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db)
	notifier, closeNotifier := notify.Build(services.NewNotificationService(db), notify.Options{
		AMQPURL:        cfg.AMQPURL,
		AMQPExchange:   cfg.AMQPExchange,
		AMQPRoutingKey: cfg.AMQPRoutingKey,
		WebhookURL:     cfg.NotifyWebhookURL,
	})
	defer closeNotifier()

	recurringService := services.NewRecurringService(db, accountService, transactionService, notifier, clk, cfg.RecurringWorkers)
	runService := services.NewRecurringRunService(db)

	result, err := recurringService.RunBatch(ctx, clk.Now())
	if err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("run batch: %w", err)
	}

	if _, err := runService.Record(result, services.TriggerWorker); err != nil {
		log.Warnw("failed to record recurring run", "error", err)
	}

	log.Infow("recurring batch finished",
		"success", result.Success,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"interrupted", result.Interrupted,
		"skip_reasons", result.SkipReasons,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if result.Failed > 0 {
		reportFailures(result)
	}
	if result.Interrupted > 0 {
		return fmt.Errorf("batch interrupted: %d templates left for the next run", result.Interrupted)
	}
	if result.Failed > 0 {
		return errTemplatesFailed
	}
	return nil
}

// reportFailures sends one Sentry event summarizing the failed templates.
// It is a no-op when Sentry was not initialized.
func reportFailures(result *services.BatchResult) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "recurring-worker")
		scope.SetLevel(sentry.LevelWarning)
		failures := make(map[string]interface{}, len(result.Errors))
		for _, e := range result.Errors {
			failures[e.TemplateID] = e.Error
		}
		scope.SetContext("failures", failures)
		sentry.CaptureMessage(fmt.Sprintf("%d recurring templates failed", result.Failed))
	})
}
