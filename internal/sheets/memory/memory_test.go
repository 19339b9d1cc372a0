package memory

import (
	"context"
	"testing"

	"debttrack/internal/core"
	"debttrack/internal/projection"
	"debttrack/internal/sheets"
)

func TestExporterStoresExports(t *testing.T) {
	e := New()
	ref, err := e.ExportSchedule(context.Background(), sheets.ScheduleExport{
		Account:   core.Account{ID: 4, Name: "Visa"},
		Scenarios: []projection.Scenario{projection.NewScenario("Current Trend", 500, 20, 100)},
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	got := e.Exports()
	if len(got) != 1 || got[0].Account.Name != "Visa" || len(got[0].Scenarios) != 1 {
		t.Fatalf("unexpected exports: %+v", got)
	}
}

func TestExporterRejectsMissingAccount(t *testing.T) {
	if _, err := New().ExportSchedule(context.Background(), sheets.ScheduleExport{}); err == nil {
		t.Fatal("expected error for export without account")
	}
}
