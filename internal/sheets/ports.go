package sheets

import (
	"context"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/projection"
)

// ScheduleExport is a scenario comparison ready to be written out.
type ScheduleExport struct {
	Account     core.Account
	GeneratedAt time.Time
	Scenarios   []projection.Scenario
}

// Ports for outbound adapters.
type (
	// ScheduleExporter writes an export and returns a reference to where
	// it landed (a sheet range, a memory slot).
	ScheduleExporter interface {
		ExportSchedule(ctx context.Context, e ScheduleExport) (ref string, err error)
	}
)
