package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"debttrack/internal/amqp"
	"debttrack/internal/ledger"
	ledgermem "debttrack/internal/ledger/memory"
	gsheet "debttrack/internal/sheets/google"
	"debttrack/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the store, then the optional publisher and
// exporter. A publisher that cannot connect is logged and skipped; an
// exporter that cannot be built is an error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store ledger.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		store = repo
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		store = ledgermem.New()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	res := &Result{Store: store}
	closers := []func() error{store.Close}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
			res.Publisher = client
			closers = append(closers, client.Close)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		exporter, err := gsheet.New(ctx, config.GoogleSpreadsheetID, gsheet.Credentials{
			JSON: config.GoogleServiceAccountJSON,
			File: config.GoogleServiceAccountFile,
		})
		if err != nil {
			_ = closeAll(closers)
			return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
		}
		f.logger.Info("Initialized Google Sheets exporter")
		res.Exporter = exporter
	}

	res.Cleanup = func() error { return closeAll(closers) }
	return res, nil
}

// closeAll closes in reverse order and joins the errors.
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
