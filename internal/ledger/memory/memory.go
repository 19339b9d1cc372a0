package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
	"debttrack/internal/ledger"
)

// Store keeps the whole ledger in process memory.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	users     map[int64]struct{}
	accounts  map[int64]core.Account
	txs       map[int64][]core.Transaction
	snapshots map[int64][]core.Snapshot
	nextID    int64
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:       time.Now,
		users:     map[int64]struct{}{},
		accounts:  map[int64]core.Account{},
		txs:       map[int64][]core.Transaction{},
		snapshots: map[int64][]core.Snapshot{},
	}
}

// NewWithClock fixes the creation timestamp source, for tests.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) EnsureUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	s.users[a.UserID] = struct{}{}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) GetAccount(_ context.Context, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, userID int64) ([]core.Account, error) {
	return s.filter(func(a core.Account) bool { return a.UserID == userID }), nil
}

func (s *Store) ListActiveAccounts(_ context.Context) ([]core.Account, error) {
	return s.filter(func(a core.Account) bool { return a.IsActive }), nil
}

func (s *Store) filter(keep func(core.Account) bool) []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) RecordTransaction(_ context.Context, tx core.Transaction) (core.Transaction, core.Account, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[tx.AccountID]
	if !ok {
		return core.Transaction{}, core.Account{}, core.ErrNotFound
	}
	tx.ID = s.id()
	list := append(s.txs[tx.AccountID], tx)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	s.txs[tx.AccountID] = list

	a.Balance = finmath.RoundCurrency(ledger.ApplyDelta(a.Balance, tx.BalanceDelta()))
	s.accounts[a.ID] = a
	return tx, a, nil
}

func (s *Store) ListTransactions(_ context.Context, accountID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.txs[accountID]...), nil
}

func (s *Store) AddSnapshot(_ context.Context, snap core.Snapshot) (core.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[snap.AccountID]; !ok {
		return core.Snapshot{}, core.ErrNotFound
	}
	snap.ID = s.id()
	list := append(s.snapshots[snap.AccountID], snap)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CapturedAt.Before(list[j].CapturedAt) })
	s.snapshots[snap.AccountID] = list
	return snap, nil
}

func (s *Store) ListSnapshots(_ context.Context, accountID int64) ([]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Snapshot{}, s.snapshots[accountID]...), nil
}

func (s *Store) Close() error { return nil }
