package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs CaptureMonthly on a standard five-field cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	worker *SnapshotWorker
}

func NewScheduler(spec string, worker *SnapshotWorker) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	s := &Scheduler{cron: c, worker: worker}
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.worker.CaptureMonthly(ctx); err != nil {
		slog.Error("Scheduled snapshot capture failed", "error", err)
	}
}

// Next returns the next scheduled run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(t)
}

// Run starts the schedule and blocks until ctx is cancelled, then waits
// for a running capture to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	slog.Info("Snapshot scheduler started", "next_run", s.Next(time.Now().UTC()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("Snapshot scheduler stopped")
}
