package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAccountCreated      EventType = "account_created"
	EventTransactionRecorded EventType = "transaction_recorded"
	EventSnapshotRecorded    EventType = "snapshot_recorded"
)

// LedgerEvent announces a ledger write. It carries ids and the resulting
// balance only; consumers reload anything else from the store.
type LedgerEvent struct {
	MessageID string    `json:"message_id"`
	Type      EventType `json:"type"`
	UserID    int64     `json:"user_id"`
	AccountID int64     `json:"account_id"`
	EntityID  int64     `json:"entity_id,omitempty"`
	Balance   float64   `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, userID, accountID, entityID int64, balance float64) *LedgerEvent {
	return &LedgerEvent{
		MessageID: uuid.NewString(),
		Type:      t,
		UserID:    userID,
		AccountID: accountID,
		EntityID:  entityID,
		Balance:   balance,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventAccountCreated, EventTransactionRecorded, EventSnapshotRecorded:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.AccountID <= 0 {
		return nil, fmt.Errorf("event %s has no account id", e.MessageID)
	}
	return &e, nil
}
