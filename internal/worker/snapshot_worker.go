package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"debttrack/internal/amqp"
	"debttrack/internal/core"
	"debttrack/internal/finmath"
	"debttrack/internal/ledger"
)

// AutoSnapshotNote marks snapshots recorded by the worker.
const AutoSnapshotNote = "automatic"

// SnapshotWorker keeps one balance snapshot per account per month so the
// trend and interest series have a point for every month.
type SnapshotWorker struct {
	store ledger.Store
	now   func() time.Time
}

// NewSnapshotWorker uses time.Now when now is nil.
func NewSnapshotWorker(store ledger.Store, now func() time.Time) *SnapshotWorker {
	if now == nil {
		now = time.Now
	}
	return &SnapshotWorker{store: store, now: now}
}

// HandleEvent records a snapshot for the event's account when its current
// month has none yet. Snapshot events are ignored.
func (w *SnapshotWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Type == amqp.EventSnapshotRecorded {
		return nil
	}

	slog.DebugContext(ctx, "Processing ledger event",
		"message_id", ev.MessageID,
		"type", ev.Type,
		"account_id", ev.AccountID)

	acct, err := w.store.GetAccount(ctx, ev.AccountID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Ledger event for unknown account, skipping", "account_id", ev.AccountID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get account %d: %w", ev.AccountID, err)
	}
	if !acct.IsActive {
		return nil
	}

	_, err = w.ensureMonthly(ctx, acct)
	return err
}

// CaptureMonthly ensures every active account has a snapshot this month and
// returns how many were created. Per-account failures are collected.
func (w *SnapshotWorker) CaptureMonthly(ctx context.Context) (int, error) {
	accounts, err := w.store.ListActiveAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active accounts: %w", err)
	}

	created := 0
	var errs []error
	for _, acct := range accounts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := w.ensureMonthly(ctx, acct)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to capture monthly snapshot", "account_id", acct.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}

	slog.InfoContext(ctx, "Monthly snapshot capture completed",
		"accounts", len(accounts),
		"created", created,
		"failed", len(errs))
	return created, errors.Join(errs...)
}

func (w *SnapshotWorker) ensureMonthly(ctx context.Context, acct core.Account) (bool, error) {
	now := w.now().UTC()
	snapshots, err := w.store.ListSnapshots(ctx, acct.ID)
	if err != nil {
		return false, fmt.Errorf("list snapshots for account %d: %w", acct.ID, err)
	}
	month := finmath.MonthKey(now)
	for _, s := range snapshots {
		if finmath.MonthKey(s.CapturedAt) == month {
			return false, nil
		}
	}

	snap, err := w.store.AddSnapshot(ctx, core.Snapshot{
		AccountID:  acct.ID,
		Balance:    acct.Balance,
		CapturedAt: now,
		Note:       AutoSnapshotNote,
	})
	if err != nil {
		return false, fmt.Errorf("add snapshot for account %d: %w", acct.ID, err)
	}
	slog.InfoContext(ctx, "Recorded automatic snapshot",
		"account_id", acct.ID,
		"snapshot_id", snap.ID,
		"balance", snap.Balance)
	return true, nil
}
