package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debttrack/internal/core"
	"debttrack/internal/ledger/memory"
	"debttrack/internal/log"
	"debttrack/internal/projection"
	"debttrack/internal/services"
	sheetsmem "debttrack/internal/sheets/memory"
)

const testSecret = "test-secret-0123456789"

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	srv      *Server
	store    *memory.Store
	exporter *sheetsmem.Exporter
	tokens   *TokenManager
}

type envOption func(*Options, *testEnv)

func withExport() envOption {
	return func(o *Options, e *testEnv) {
		e.exporter = sheetsmem.New()
	}
}

func withRateLimit(perMin int) envOption {
	return func(o *Options, _ *testEnv) { o.RateLimitPerMin = perMin }
}

func withReady(p Pinger) envOption {
	return func(o *Options, _ *testEnv) { o.Ready = p }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{store: memory.New(), tokens: NewTokenManager(testSecret, "debttrack")}
	o := Options{
		Addr:            ":0",
		Tokens:          env.tokens,
		Logger:          log.NewWithWriter(log.DefaultConfig(), io.Discard),
		RateLimitPerMin: 1000,
	}
	for _, opt := range opts {
		opt(&o, env)
	}

	analytics := services.NewAnalyticsService(env.store, services.AnalyticsConfig{})
	o.Ledger = services.NewLedgerService(env.store, nil)
	o.Analytics = analytics
	if env.exporter != nil {
		o.Export = services.NewExportService(analytics, env.exporter)
	} else {
		o.Export = services.NewExportService(analytics, nil)
	}

	env.srv = NewServer(o)
	t.Cleanup(func() { _ = env.srv.Shutdown(context.Background()) })
	return env
}

func (e *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := e.tokens.Issue(userID, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (e *testEnv) createAccount(t *testing.T, userID int64, body map[string]any) core.Account {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/accounts", userID, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[core.Account](t, rr)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, withReady(fakePinger{}))

	rr := env.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"store":"ok"`)

	failing := newTestEnv(t, withReady(fakePinger{err: errors.New("db down")}))
	rr = failing.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "db down")
}

func TestMiddlewareHeaders(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/accounts", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "missing bearer token", decode[errorBody](t, rr).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr = httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	other, err := NewTokenManager("another-secret-0123456789", "debttrack").Issue(1, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rr = httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSimulate(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"balance": 1000, "annual_rate": 12, "monthly_payment": 100}
	rr := env.do(t, http.MethodPost, "/api/projections/simulate", 1, body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[projection.PayoffProjection](t, rr)
	want := projection.Simulate(1000, 12, 100)
	assert.Equal(t, want.Months, got.Months)
	assert.Equal(t, want.TotalInterest, got.TotalInterest)
	assert.Empty(t, got.Error)

	rr = env.do(t, http.MethodPost, "/api/projections/simulate", 1, body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uint64(1), env.srv.simCache.Stats().Hits)

	rr = env.do(t, http.MethodPost, "/api/projections/simulate", 1,
		map[string]any{"balance": 1000, "annual_rate": 24, "monthly_payment": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, projection.ErrPaymentBelowInterest, decode[projection.PayoffProjection](t, rr).Error)
}

func TestSimulate_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"balance":`, http.StatusBadRequest},
		{"empty", ``, http.StatusBadRequest},
		{"unknown field", `{"balance":1,"annual_rate":1,"monthly_payment":1,"x":1}`, http.StatusBadRequest},
		{"missing payment", `{"balance":1000,"annual_rate":12}`, http.StatusUnprocessableEntity},
		{"negative balance", `{"balance":-1,"annual_rate":12,"monthly_payment":10}`, http.StatusUnprocessableEntity},
		{"rate too high", `{"balance":1,"annual_rate":101,"monthly_payment":10}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/projections/simulate", 1, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[errorBody](t, rr).Error)
		})
	}
}

func TestRequiredPayment(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/projections/required-payment", 1,
		map[string]any{"balance": 1200, "annual_rate": 0, "target_months": 12})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[requiredPaymentResponse](t, rr)
	assert.Equal(t, 100.0, got.MonthlyPayment)
	require.NotNil(t, got.Projection)
	assert.Equal(t, 12, got.Projection.Months)

	rr = env.do(t, http.MethodPost, "/api/projections/required-payment", 1,
		map[string]any{"balance": 1200, "annual_rate": 10, "target_months": 0})
	require.Equal(t, http.StatusOK, rr.Code)
	got = decode[requiredPaymentResponse](t, rr)
	assert.Equal(t, projection.ErrNonPositiveTarget, got.Error)
	assert.Nil(t, got.Projection)
}

func TestAccountLifecycle(t *testing.T) {
	env := newTestEnv(t)

	acct := env.createAccount(t, 1, map[string]any{
		"name": "Visa", "balance": 1000, "interest_rate": 18, "minimum_payment": 50,
	})
	assert.Equal(t, int64(1), acct.UserID)
	assert.True(t, acct.IsActive)

	rr := env.do(t, http.MethodGet, "/api/accounts", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.Account](t, rr), 1)

	rr = env.do(t, http.MethodGet, "/api/accounts", 2, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	path := "/api/accounts/" + itoa(acct.ID)
	rr = env.do(t, http.MethodPost, path+"/transactions", 1,
		map[string]any{"amount": "100.00", "kind": "payment", "date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	txResp := decode[transactionResponse](t, rr)
	assert.Equal(t, 900.0, txResp.Account.Balance)
	assert.Equal(t, core.KindPayment, txResp.Transaction.Kind)

	rr = env.do(t, http.MethodPost, path+"/transactions", 1,
		map[string]any{"amount": "-25", "kind": "ADJUSTMENT"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 875.0, decode[transactionResponse](t, rr).Account.Balance)

	rr = env.do(t, http.MethodPost, path+"/snapshots", 1, map[string]any{"balance": 875})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	tests := []struct {
		name   string
		path   string
		user   int64
		body   map[string]any
		status int
	}{
		{"other user", path + "/transactions", 2, map[string]any{"amount": "1", "kind": "PAYMENT"}, http.StatusForbidden},
		{"missing account", "/api/accounts/999/transactions", 1, map[string]any{"amount": "1", "kind": "PAYMENT"}, http.StatusNotFound},
		{"bad kind", path + "/transactions", 1, map[string]any{"amount": "1", "kind": "REFUND"}, http.StatusUnprocessableEntity},
		{"negative payment", path + "/transactions", 1, map[string]any{"amount": "-1", "kind": "PAYMENT"}, http.StatusUnprocessableEntity},
		{"bad date", path + "/transactions", 1, map[string]any{"amount": "1", "kind": "PAYMENT", "date": "03/01/2024"}, http.StatusUnprocessableEntity},
		{"negative snapshot", path + "/snapshots", 1, map[string]any{"balance": -5}, http.StatusUnprocessableEntity},
		{"blank name", "/api/accounts", 1, map[string]any{"name": "  ", "balance": 1, "interest_rate": 1}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestAccountAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	acct := env.createAccount(t, 1, map[string]any{
		"name": "Loan", "balance": 5000, "interest_rate": 12, "minimum_payment": 150, "credit_limit": 10000,
	})
	path := "/api/accounts/" + itoa(acct.ID)
	rr := env.do(t, http.MethodPost, path+"/transactions", 1, map[string]any{"amount": "200", "kind": "PAYMENT"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, path+"/analytics", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	a := decode[map[string]any](t, rr)
	assert.Equal(t, 4800.0, a["current_balance"])

	rr = env.do(t, http.MethodGet, path+"/scenarios?lookback=6", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	scenarios := decode[[]projection.Scenario](t, rr)
	_, ok := projection.Find(scenarios, projection.ScenarioMinimum)
	assert.True(t, ok)

	rr = env.do(t, http.MethodGet, path+"/scenarios?lookback=99", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, path+"/interest?months=6", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, kind := range []string{"balance-reduction", "interest", "payment-distribution", "projection-comparison"} {
		rr = env.do(t, http.MethodGet, path+"/charts/"+kind, 1, nil)
		assert.Equal(t, http.StatusOK, rr.Code, kind)
	}
	rr = env.do(t, http.MethodGet, path+"/charts/pie", 1, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, path+"/analytics", 2, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPortfolioEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/portfolio", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	env.createAccount(t, 1, map[string]any{"name": "A", "balance": 1000, "interest_rate": 10})
	env.createAccount(t, 1, map[string]any{"name": "B", "balance": 500, "interest_rate": 20})

	rr = env.do(t, http.MethodGet, "/api/portfolio", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"total_balance":1500`)

	for _, p := range []string{"/api/portfolio/trends", "/api/portfolio/charts/balances"} {
		rr = env.do(t, http.MethodGet, p, 1, nil)
		assert.Equal(t, http.StatusOK, rr.Code, p)
	}
}

func TestExport(t *testing.T) {
	disabled := newTestEnv(t)
	acct := disabled.createAccount(t, 1, map[string]any{"name": "A", "balance": 1000, "interest_rate": 10, "minimum_payment": 50})
	rr := disabled.do(t, http.MethodPost, "/api/accounts/"+itoa(acct.ID)+"/export", 1, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	enabled := newTestEnv(t, withExport())
	acct = enabled.createAccount(t, 1, map[string]any{"name": "A", "balance": 1000, "interest_rate": 10, "minimum_payment": 50})
	rr = enabled.do(t, http.MethodPost, "/api/accounts/"+itoa(acct.ID)+"/export", 1, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "mem:1", decode[map[string]string](t, rr)["ref"])
	require.Len(t, enabled.exporter.Exports(), 1)
	assert.NotEmpty(t, enabled.exporter.Exports()[0].Scenarios)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, withRateLimit(2))
	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodGet, "/api/accounts", 1, nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := env.do(t, http.MethodGet, "/api/accounts", 1, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	rr = env.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "health checks are not rate limited")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/nope", 0, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(t, http.MethodPost, "/healthz", 0, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
