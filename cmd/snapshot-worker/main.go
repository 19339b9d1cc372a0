package main

import (
	"context"
	"errors"
	"os"
	"sync"

	"debttrack/internal/amqp"
	"debttrack/internal/cli"
	"debttrack/internal/log"
	"debttrack/internal/storage"
	"debttrack/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker, false)
	logger.Info("Starting snapshot-worker", "schedule", cfg.SnapshotSchedule, "amqp_enabled", cfg.AMQPEnabled())

	if cfg.DataBackend != "sqlite" {
		logger.Error("snapshot-worker needs the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	snapshots := worker.NewSnapshotWorker(repo, nil)
	scheduler, err := worker.NewScheduler(cfg.SnapshotSchedule, snapshots)
	if err != nil {
		logger.Error("Failed to create scheduler", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	// catch up on a month that started while the worker was down
	if created, err := snapshots.CaptureMonthly(ctx); err != nil {
		logger.Error("Startup snapshot capture failed", log.FieldError, err.Error())
	} else {
		logger.Info("Startup snapshot capture done", "created", created)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			stop()
		} else {
			defer client.Close()
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := client.ConsumeLedgerEvents(ctx, snapshots.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Ledger event consumption failed", log.FieldError, err.Error())
					stop()
				}
			}()
		}
	} else {
		logger.Info("AMQP disabled, running on schedule only")
	}

	<-ctx.Done()
	logger.Info("Shutting down snapshot-worker")
	wg.Wait()
	logger.Info("Snapshot-worker stopped")
}
