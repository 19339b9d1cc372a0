package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindPayment    Kind = "PAYMENT"
	KindCharge     Kind = "CHARGE"
	KindInterest   Kind = "INTEREST"
	KindAdjustment Kind = "ADJUSTMENT"
)

type (
	// Kind is the closed set of ledger entry kinds.
	Kind string

	Account struct {
		ID             int64     `json:"id"`
		UserID         int64     `json:"user_id"`
		Name           string    `json:"name"`
		Balance        float64   `json:"balance"`
		CreditLimit    *float64  `json:"credit_limit,omitempty"`
		InterestRate   float64   `json:"interest_rate"` // annual, percent (18.99 not 0.1899)
		MinimumPayment *float64  `json:"minimum_payment,omitempty"`
		IsActive       bool      `json:"is_active"`
		CreatedAt      time.Time `json:"created_at"`
	}

	// Transaction amounts are magnitudes for PAYMENT, CHARGE and INTEREST.
	// ADJUSTMENT carries its sign: negative lowers the debt, positive raises it.
	Transaction struct {
		ID        int64     `json:"id"`
		AccountID int64     `json:"account_id"`
		Amount    float64   `json:"amount"`
		Kind      Kind      `json:"kind"`
		Date      time.Time `json:"date"`
		Note      string    `json:"note,omitempty"`
	}

	Snapshot struct {
		ID         int64     `json:"id"`
		AccountID  int64     `json:"account_id"`
		Balance    float64   `json:"balance"`
		CapturedAt time.Time `json:"captured_at"`
		Note       string    `json:"note,omitempty"`
	}

	// AccountLedger is one account with its transactions ordered by date
	// and its snapshots ordered by capture time, both ascending.
	AccountLedger struct {
		Account      Account
		Transactions []Transaction
		Snapshots    []Snapshot
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidRate     = errors.New("invalid interest rate")
	ErrNegativeBalance = errors.New("balance cannot be negative")
	ErrEmptyName       = errors.New("empty account name")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// ParseKind accepts any casing of a known kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindPayment, KindCharge, KindInterest, KindAdjustment:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("account name too long (max 100 characters)")
	}
	if a.Balance < 0 {
		return ErrNegativeBalance
	}
	if a.InterestRate < 0 || a.InterestRate > 100 {
		return ErrInvalidRate
	}
	if a.CreditLimit != nil && *a.CreditLimit < 0 {
		return errors.New("credit limit cannot be negative")
	}
	if a.MinimumPayment != nil && *a.MinimumPayment < 0 {
		return errors.New("minimum payment cannot be negative")
	}
	return nil
}

// MonthlyRate converts the annual percentage rate to a per-month fraction.
func (a Account) MonthlyRate() float64 {
	return a.InterestRate / 12 / 100
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	if t.Kind != KindAdjustment && t.Amount < 0 {
		return ErrInvalidAmount
	}
	if len(t.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

func (s Snapshot) Validate() error {
	if s.Balance < 0 {
		return ErrNegativeBalance
	}
	if s.CapturedAt.IsZero() {
		return ErrZeroDate
	}
	if len(s.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}
