package backend

import (
	"context"

	"debttrack/internal/ledger"
	"debttrack/internal/services"
	"debttrack/internal/sheets"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles the ledger store with the optional collaborators built
// alongside it. Publisher and Exporter are nil when not configured.
type Result struct {
	Store     ledger.Store
	Publisher services.EventPublisher
	Exporter  sheets.ScheduleExporter
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Event publishing, skipped when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Schedule export, skipped when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType selects the ledger store.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
