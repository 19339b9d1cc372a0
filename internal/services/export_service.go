package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"debttrack/internal/projection"
	"debttrack/internal/sheets"
)

var ErrExportDisabled = errors.New("schedule export is not configured")

// ExportService writes an account's scenario comparison to an exporter.
type ExportService struct {
	analytics *AnalyticsService
	exporter  sheets.ScheduleExporter
}

// NewExportService accepts a nil exporter, in which case every export
// returns ErrExportDisabled.
func NewExportService(analytics *AnalyticsService, exporter sheets.ScheduleExporter) *ExportService {
	return &ExportService{analytics: analytics, exporter: exporter}
}

func (s *ExportService) Enabled() bool {
	return s != nil && s.exporter != nil
}

func (s *ExportService) ExportScenarios(ctx context.Context, userID, accountID int64) (string, error) {
	if !s.Enabled() {
		return "", ErrExportDisabled
	}
	l, err := s.analytics.Ledger(ctx, userID, accountID)
	if err != nil {
		return "", err
	}
	now := s.analytics.now()
	scenarios := projection.BuildScenarios(l.Account, l.Transactions, now, s.analytics.cfg.LookbackMonths)
	ref, err := s.exporter.ExportSchedule(ctx, sheets.ScheduleExport{
		Account:     l.Account,
		GeneratedAt: now,
		Scenarios:   scenarios,
	})
	if err != nil {
		return "", fmt.Errorf("export schedule: %w", err)
	}
	slog.InfoContext(ctx, "Exported payoff schedule", "account_id", accountID, "ref", ref, "scenarios", len(scenarios))
	return ref, nil
}
