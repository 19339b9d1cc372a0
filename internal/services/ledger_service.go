package services

import (
	"context"
	"fmt"
	"log/slog"

	"debttrack/internal/amqp"
	"debttrack/internal/core"
	"debttrack/internal/ledger"
)

// EventPublisher announces ledger writes to other processes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService records ledger writes in the store and publishes an event
// for each one. The store write is authoritative; publishing is best effort.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
}

// NewLedgerService accepts a nil publisher, which disables events.
func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) CreateAccount(ctx context.Context, userID int64, a core.Account) (core.Account, error) {
	a.ID = 0
	a.UserID = userID
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return core.Account{}, fmt.Errorf("ensure user: %w", err)
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventAccountCreated, userID, created.ID, created.ID, created.Balance))
	return created, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// RecordTransaction stores tx against an owned account and returns the
// account with its updated balance.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID, accountID int64, tx core.Transaction) (core.Transaction, core.Account, error) {
	if _, err := authorize(ctx, s.store, userID, accountID); err != nil {
		return core.Transaction{}, core.Account{}, err
	}
	tx.ID = 0
	tx.AccountID = accountID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, core.Account{}, err
	}
	saved, acct, err := s.store.RecordTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, core.Account{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionRecorded, userID, accountID, saved.ID, acct.Balance))
	return saved, acct, nil
}

func (s *LedgerService) RecordSnapshot(ctx context.Context, userID, accountID int64, snap core.Snapshot) (core.Snapshot, error) {
	if _, err := authorize(ctx, s.store, userID, accountID); err != nil {
		return core.Snapshot{}, err
	}
	snap.ID = 0
	snap.AccountID = accountID
	if err := snap.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	saved, err := s.store.AddSnapshot(ctx, snap)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventSnapshotRecorded, userID, accountID, saved.ID, saved.Balance))
	return saved, nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", "type", event.Type)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		// the write already succeeded
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"account_id", event.AccountID,
			"error", err)
	}
}

// Close closes the store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
