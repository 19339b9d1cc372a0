// Package ledger defines the persistence ports the services read ledgers
// through and write them to.
package ledger

import (
	"context"
	"fmt"

	"debttrack/internal/core"
)

type (
	AccountReader interface {
		// GetAccount returns core.ErrNotFound for an unknown id.
		GetAccount(ctx context.Context, id int64) (core.Account, error)
		ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
		ListActiveAccounts(ctx context.Context) ([]core.Account, error)
	}

	// TransactionReader returns transactions ordered by date ascending.
	TransactionReader interface {
		ListTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error)
	}

	// SnapshotReader returns snapshots ordered by capture time ascending.
	SnapshotReader interface {
		ListSnapshots(ctx context.Context, accountID int64) ([]core.Snapshot, error)
	}

	Reader interface {
		AccountReader
		TransactionReader
		SnapshotReader
	}

	Writer interface {
		EnsureUser(ctx context.Context, userID int64) error
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		// RecordTransaction stores tx and applies its balance delta to the
		// account in one step. The balance never goes below zero.
		RecordTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, core.Account, error)
		AddSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error)
	}

	Store interface {
		Reader
		Writer
		Close() error
	}
)

// Load fetches an account together with its ordered transactions and
// snapshots.
func Load(ctx context.Context, r Reader, accountID int64) (core.AccountLedger, error) {
	acct, err := r.GetAccount(ctx, accountID)
	if err != nil {
		return core.AccountLedger{}, fmt.Errorf("get account %d: %w", accountID, err)
	}
	return LoadFor(ctx, r, acct)
}

// LoadFor fetches the transactions and snapshots of an already loaded account.
func LoadFor(ctx context.Context, r Reader, acct core.Account) (core.AccountLedger, error) {
	txs, err := r.ListTransactions(ctx, acct.ID)
	if err != nil {
		return core.AccountLedger{}, fmt.Errorf("list transactions for account %d: %w", acct.ID, err)
	}
	snaps, err := r.ListSnapshots(ctx, acct.ID)
	if err != nil {
		return core.AccountLedger{}, fmt.Errorf("list snapshots for account %d: %w", acct.ID, err)
	}
	return core.AccountLedger{Account: acct, Transactions: txs, Snapshots: snaps}, nil
}

// ApplyDelta returns the balance after delta, floored at zero.
func ApplyDelta(balance, delta float64) float64 {
	b := balance + delta
	if b < 0 {
		return 0
	}
	return b
}
