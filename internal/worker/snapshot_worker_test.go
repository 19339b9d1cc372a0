package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debttrack/internal/amqp"
	"debttrack/internal/core"
	"debttrack/internal/ledger/memory"
)

var march = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func seed(t *testing.T, store *memory.Store, name string, active bool) core.Account {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureUser(ctx, 1))
	acct, err := store.CreateAccount(ctx, core.Account{UserID: 1, Name: name, Balance: 1000, InterestRate: 12, IsActive: active})
	require.NoError(t, err)
	return acct
}

func TestHandleEvent_RecordsOncePerMonth(t *testing.T) {
	store := memory.New()
	acct := seed(t, store, "Visa", true)
	w := NewSnapshotWorker(store, fixedClock(march))
	ctx := context.Background()

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, 1, acct.ID, 10, 900)
	require.NoError(t, w.HandleEvent(ctx, ev))
	require.NoError(t, w.HandleEvent(ctx, ev))

	snaps, err := store.ListSnapshots(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 1000.0, snaps[0].Balance, "uses the stored balance, not the event's")
	assert.Equal(t, AutoSnapshotNote, snaps[0].Note)
	assert.Equal(t, march, snaps[0].CapturedAt)
}

func TestHandleEvent_Skips(t *testing.T) {
	store := memory.New()
	active := seed(t, store, "Active", true)
	inactive := seed(t, store, "Closed", false)
	w := NewSnapshotWorker(store, fixedClock(march))
	ctx := context.Background()

	tests := []struct {
		name string
		ev   *amqp.LedgerEvent
		acct int64
	}{
		{"snapshot event", amqp.NewLedgerEvent(amqp.EventSnapshotRecorded, 1, active.ID, 1, 1000), active.ID},
		{"inactive account", amqp.NewLedgerEvent(amqp.EventTransactionRecorded, 1, inactive.ID, 1, 1000), inactive.ID},
		{"unknown account", amqp.NewLedgerEvent(amqp.EventAccountCreated, 1, 999, 999, 0), 999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, w.HandleEvent(ctx, tt.ev))
			snaps, err := store.ListSnapshots(ctx, tt.acct)
			require.NoError(t, err)
			assert.Empty(t, snaps)
		})
	}
}

func TestHandleEvent_ManualSnapshotCounts(t *testing.T) {
	store := memory.New()
	acct := seed(t, store, "Visa", true)
	ctx := context.Background()
	_, err := store.AddSnapshot(ctx, core.Snapshot{AccountID: acct.ID, Balance: 950, CapturedAt: march.AddDate(0, 0, -10)})
	require.NoError(t, err)

	w := NewSnapshotWorker(store, fixedClock(march))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionRecorded, 1, acct.ID, 1, 900)))

	snaps, err := store.ListSnapshots(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestCaptureMonthly(t *testing.T) {
	store := memory.New()
	a := seed(t, store, "A", true)
	seed(t, store, "B", true)
	seed(t, store, "Closed", false)
	ctx := context.Background()

	w := NewSnapshotWorker(store, fixedClock(march))
	created, err := w.CaptureMonthly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = w.CaptureMonthly(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	next := NewSnapshotWorker(store, fixedClock(march.AddDate(0, 1, 0)))
	created, err = next.CaptureMonthly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	snaps, err := store.ListSnapshots(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestCaptureMonthly_CancelledContext(t *testing.T) {
	store := memory.New()
	seed(t, store, "A", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := NewSnapshotWorker(store, fixedClock(march)).CaptureMonthly(ctx)
	assert.Zero(t, created)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScheduler(t *testing.T) {
	w := NewSnapshotWorker(memory.New(), nil)

	_, err := NewScheduler("not a schedule", w)
	assert.Error(t, err)

	s, err := NewScheduler("0 0 1 * *", w)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), s.Next(march))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
