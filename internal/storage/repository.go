package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection, for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

func optionalCents(v *float64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toCents(*v), Valid: true}
}

func optionalAmount(n sql.NullInt64) *float64 {
	if !n.Valid {
		return nil
	}
	v := fromCents(n.Int64)
	return &v
}

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func (r *SQLiteRepository) EnsureUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		userID, millis(r.now()))
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := r.EnsureUser(ctx, a.UserID); err != nil {
		return core.Account{}, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, balance_cents, credit_limit_cents, interest_rate, minimum_payment_cents, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, toCents(a.Balance), optionalCents(a.CreditLimit), a.InterestRate,
		optionalCents(a.MinimumPayment), a.IsActive, millis(a.CreatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID = id

	slog.InfoContext(ctx, "Account saved to SQLite", "id", a.ID, "user_id", a.UserID, "name", a.Name)
	return a, nil
}

const accountColumns = `id, user_id, name, balance_cents, credit_limit_cents, interest_rate, minimum_payment_cents, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a                 core.Account
		balance, created  int64
		limit, minPayment sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &limit, &a.InterestRate, &minPayment, &a.IsActive, &created); err != nil {
		return core.Account{}, err
	}
	a.Balance = fromCents(balance)
	a.CreditLimit = optionalAmount(limit)
	a.MinimumPayment = optionalAmount(minPayment)
	a.CreatedAt = fromMillis(created)
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	accounts, err := r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts for user %d: %w", userID, err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) ListActiveAccounts(ctx context.Context) ([]core.Account, error) {
	accounts, err := r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, core.Account, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.Account{}, err
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	a, err := scanAccount(dbtx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, t.AccountID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("get account %d: %w", t.AccountID, err)
	}

	res, err := dbtx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, amount_cents, kind, occurred_at, note) VALUES (?, ?, ?, ?, ?)`,
		t.AccountID, toCents(t.Amount), string(t.Kind), millis(t.Date), t.Note)
	if err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("insert transaction: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("insert transaction: %w", err)
	}

	a.Balance = fromCents(toCents(ledger.ApplyDelta(a.Balance, t.BalanceDelta())))
	if _, err := dbtx.ExecContext(ctx, `UPDATE accounts SET balance_cents = ? WHERE id = ?`, toCents(a.Balance), a.ID); err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("update account balance: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"account_id", t.AccountID,
		"kind", t.Kind,
		"amount", t.Amount,
		"balance", a.Balance)
	return t, a, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount_cents, kind, occurred_at, note
		FROM transactions WHERE account_id = ? ORDER BY occurred_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var (
			t            core.Transaction
			amount, when int64
			kind         string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &amount, &kind, &when, &t.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount = fromCents(amount)
		t.Kind = core.Kind(kind)
		t.Date = fromMillis(when)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) AddSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error) {
	if err := s.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	if _, err := r.GetAccount(ctx, s.AccountID); err != nil {
		return core.Snapshot{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (account_id, balance_cents, captured_at, note) VALUES (?, ?, ?, ?)`,
		s.AccountID, toCents(s.Balance), millis(s.CapturedAt), s.Note)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite", "id", s.ID, "account_id", s.AccountID, "balance", s.Balance)
	return s, nil
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context, accountID int64) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, balance_cents, captured_at, note
		FROM snapshots WHERE account_id = ? ORDER BY captured_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []core.Snapshot{}
	for rows.Next() {
		var (
			s             core.Snapshot
			balance, when int64
		)
		if err := rows.Scan(&s.ID, &s.AccountID, &balance, &when, &s.Note); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Balance = fromCents(balance)
		s.CapturedAt = fromMillis(when)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
