package http

import (
	"net/http"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/log"
)

type createAccountRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Balance        *float64 `json:"balance" validate:"required,gte=0"`
	CreditLimit    *float64 `json:"credit_limit" validate:"omitempty,gte=0"`
	InterestRate   *float64 `json:"interest_rate" validate:"required,gte=0,lte=100"`
	MinimumPayment *float64 `json:"minimum_payment" validate:"omitempty,gte=0"`
	IsActive       *bool    `json:"is_active"`
}

type recordTransactionRequest struct {
	Amount string `json:"amount" validate:"required"`
	Kind   string `json:"kind" validate:"required"`
	Date   string `json:"date"`
	Note   string `json:"note" validate:"max=500"`
}

type recordSnapshotRequest struct {
	Balance    *float64 `json:"balance" validate:"required,gte=0"`
	CapturedAt string   `json:"captured_at"`
	Note       string   `json:"note" validate:"max=500"`
}

type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Account     core.Account     `json:"account"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	acct := core.Account{
		Name:           sanitizeInput(req.Name),
		Balance:        *req.Balance,
		CreditLimit:    req.CreditLimit,
		InterestRate:   *req.InterestRate,
		MinimumPayment: req.MinimumPayment,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	created, err := s.ledger.CreateAccount(r.Context(), userIDFrom(r.Context()), acct)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// handleRecordTransaction takes the amount as a decimal string so no
// precision is lost before rounding to the cent.
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req recordTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount, kind == core.KindAdjustment)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount "+quote(req.Amount))
		return
	}
	date, err := parseDate(req.Date, time.Now())
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx := core.Transaction{Amount: amount, Kind: kind, Date: date, Note: sanitizeInput(req.Note)}
	saved, acct, err := s.ledger.RecordTransaction(r.Context(), userIDFrom(r.Context()), accountID, tx)
	if err != nil {
		writeServiceError(w, r, log.OpRecord, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionResponse{Transaction: saved, Account: acct})
}

func (s *Server) handleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req recordSnapshotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	capturedAt, err := parseDate(req.CapturedAt, time.Now())
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	snap := core.Snapshot{Balance: *req.Balance, CapturedAt: capturedAt, Note: sanitizeInput(req.Note)}
	saved, err := s.ledger.RecordSnapshot(r.Context(), userIDFrom(r.Context()), accountID, snap)
	if err != nil {
		writeServiceError(w, r, log.OpSnapshot, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func quote(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return "\"" + sanitizeInput(s) + "\""
}
