package memory

import (
	"context"
	"fmt"
	"sync"

	"debttrack/internal/sheets"
)

// Exporter keeps exports in memory, for tests and local runs.
type Exporter struct {
	mu    sync.Mutex
	items []sheets.ScheduleExport
}

var _ sheets.ScheduleExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportSchedule stores the export and returns a synthetic reference.
func (e *Exporter) ExportSchedule(_ context.Context, x sheets.ScheduleExport) (string, error) {
	if x.Account.ID == 0 {
		return "", fmt.Errorf("export has no account")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append(e.items, x)
	return fmt.Sprintf("mem:%d", len(e.items)), nil
}

// Exports returns a copy of everything exported so far.
func (e *Exporter) Exports() []sheets.ScheduleExport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.ScheduleExport(nil), e.items...)
}
