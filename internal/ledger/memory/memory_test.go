package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/ledger"
)

func TestStoreRecordTransactionUpdatesBalance(t *testing.T) {
	ctx := context.Background()
	s := New()
	acct, err := s.CreateAccount(ctx, core.Account{UserID: 1, Name: "Visa", Balance: 500, InterestRate: 20, IsActive: true})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acct.ID == 0 || acct.CreatedAt.IsZero() {
		t.Fatalf("expected id and creation time, got %+v", acct)
	}

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, acct, err = s.RecordTransaction(ctx, core.Transaction{AccountID: acct.ID, Kind: core.KindCharge, Amount: 120.25, Date: day})
	if err != nil || acct.Balance != 620.25 {
		t.Fatalf("unexpected charge result: balance=%v err=%v", acct.Balance, err)
	}
	_, acct, err = s.RecordTransaction(ctx, core.Transaction{AccountID: acct.ID, Kind: core.KindPayment, Amount: 1000, Date: day.AddDate(0, 0, -3)})
	if err != nil || acct.Balance != 0 {
		t.Fatalf("overpayment must floor balance at zero: balance=%v err=%v", acct.Balance, err)
	}

	l, err := ledger.Load(ctx, s, acct.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Transactions) != 2 || l.Transactions[0].Kind != core.KindPayment {
		t.Fatalf("transactions not ordered by date: %+v", l.Transactions)
	}
}

func TestStoreUnknownAccount(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.GetAccount(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, _, err := s.RecordTransaction(ctx, core.Transaction{AccountID: 99, Kind: core.KindPayment, Amount: 1, Date: time.Now()})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ledger.Load(ctx, s, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestStoreSnapshotsAndListing(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateAccount(ctx, core.Account{UserID: 1, Name: "A", Balance: 10, IsActive: true})
	b, _ := s.CreateAccount(ctx, core.Account{UserID: 2, Name: "B", Balance: 10})

	later := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.AddSnapshot(ctx, core.Snapshot{AccountID: a.ID, Balance: 10, CapturedAt: later}); err != nil {
		t.Fatalf("add snapshot: %v", err)
	}
	if _, err := s.AddSnapshot(ctx, core.Snapshot{AccountID: a.ID, Balance: 20, CapturedAt: later.AddDate(0, -1, 0)}); err != nil {
		t.Fatalf("add snapshot: %v", err)
	}
	snaps, _ := s.ListSnapshots(ctx, a.ID)
	if len(snaps) != 2 || snaps[0].Balance != 20 {
		t.Fatalf("snapshots not ordered: %+v", snaps)
	}

	mine, _ := s.ListAccounts(ctx, 2)
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Fatalf("unexpected accounts for user 2: %+v", mine)
	}
	active, _ := s.ListActiveAccounts(ctx)
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("unexpected active accounts: %+v", active)
	}
}
