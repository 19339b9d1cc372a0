package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debttrack/internal/core"
	"debttrack/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	limit, minPay := 5000.0, 35.5
	created, err := repo.CreateAccount(ctx, core.Account{
		UserID: 3, Name: "Visa", Balance: 1234.56, InterestRate: 19.99,
		CreditLimit: &limit, MinimumPayment: &minPay, IsActive: true,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visa", got.Name)
	assert.Equal(t, 1234.56, got.Balance)
	assert.Equal(t, 19.99, got.InterestRate)
	require.NotNil(t, got.CreditLimit)
	assert.Equal(t, 5000.0, *got.CreditLimit)
	require.NotNil(t, got.MinimumPayment)
	assert.Equal(t, 35.5, *got.MinimumPayment)
	assert.True(t, got.IsActive)
	assert.Equal(t, created.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	_, err = repo.GetAccount(ctx, 404)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	list, err := repo.ListAccounts(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	empty, err := repo.ListAccounts(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteRecordTransaction(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	acct, err := repo.CreateAccount(ctx, core.Account{UserID: 1, Name: "Loan", Balance: 300, InterestRate: 6, IsActive: true})
	require.NoError(t, err)

	day := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	_, acct, err = repo.RecordTransaction(ctx, core.Transaction{AccountID: acct.ID, Kind: core.KindInterest, Amount: 1.5, Date: day})
	require.NoError(t, err)
	assert.Equal(t, 301.5, acct.Balance)

	_, acct, err = repo.RecordTransaction(ctx, core.Transaction{AccountID: acct.ID, Kind: core.KindAdjustment, Amount: -1.5, Date: day.AddDate(0, 0, -1), Note: "waived"})
	require.NoError(t, err)
	assert.Equal(t, 300.0, acct.Balance)

	_, acct, err = repo.RecordTransaction(ctx, core.Transaction{AccountID: acct.ID, Kind: core.KindPayment, Amount: 500, Date: day.AddDate(0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acct.Balance)

	l, err := ledger.Load(ctx, repo, acct.ID)
	require.NoError(t, err)
	require.Len(t, l.Transactions, 3)
	assert.Equal(t, core.KindAdjustment, l.Transactions[0].Kind)
	assert.Equal(t, -1.5, l.Transactions[0].Amount)
	assert.Equal(t, "waived", l.Transactions[0].Note)
	assert.Equal(t, 0.0, l.Account.Balance)

	_, _, err = repo.RecordTransaction(ctx, core.Transaction{AccountID: 9999, Kind: core.KindPayment, Amount: 1, Date: day})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteSnapshotsAndActive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a, err := repo.CreateAccount(ctx, core.Account{UserID: 1, Name: "A", Balance: 100, IsActive: true})
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, core.Account{UserID: 1, Name: "B", Balance: 100, IsActive: false})
	require.NoError(t, err)

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.AddSnapshot(ctx, core.Snapshot{AccountID: a.ID, Balance: 90, CapturedAt: march})
	require.NoError(t, err)
	_, err = repo.AddSnapshot(ctx, core.Snapshot{AccountID: a.ID, Balance: 120, CapturedAt: march.AddDate(0, -2, 0), Note: "opening"})
	require.NoError(t, err)

	snaps, err := repo.ListSnapshots(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 120.0, snaps[0].Balance)
	assert.Equal(t, "opening", snaps[0].Note)
	assert.True(t, snaps[1].CapturedAt.Equal(march))

	_, err = repo.AddSnapshot(ctx, core.Snapshot{AccountID: 777, Balance: 1, CapturedAt: march})
	assert.ErrorIs(t, err, core.ErrNotFound)

	active, err := repo.ListActiveAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	v, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}
