package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: slog.LevelInfo, Component: ComponentLedger}, &buf)
	l.Info("recorded", FieldAccountID, 7)
	l.WithComponent(ComponentWorker).Warn("late")
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "account_id=7")
	assert.Contains(t, out, "component=worker")
	assert.NotContains(t, out, "hidden")
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithAccount(1, 2).WithError(errors.New("boom")).WithError(nil).WithOperation(OpRecord)
	assert.Equal(t, int64(1), f[FieldUserID])
	assert.Equal(t, int64(2), f[FieldAccountID])
	assert.Equal(t, "boom", f[FieldError])
	assert.Equal(t, OpRecord, f[FieldOperation])
	assert.Len(t, f.ToSlice(), 8)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(Config{Level: slog.LevelInfo, Component: ComponentHTTP}, &buf)
	mw := RequestLogger(base,
		func(*http.Request) string { return "req-1" },
		func(*http.Request) string { return "10.0.0.1" })

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPEnd(r.Context(), r, http.StatusTeapot, 3)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=WARN"), out)
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "client_ip=10.0.0.1")
	assert.Contains(t, out, "status_code=418")
}

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, ComponentApp, FromContext(context.Background()).Component())
}
