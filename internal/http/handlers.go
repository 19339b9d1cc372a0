package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the ledger store and reports cache and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.ready == nil {
		checks["store"] = "not_checked"
	} else if err := s.ready.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["export"] = map[bool]string{true: "enabled", false: "disabled"}[s.export.Enabled()]
	checks["cache"] = map[string]any{
		"simulate":         s.simCache.Stats(),
		"required_payment": s.requiredCache.Stats(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.activeClients(),
		"rejected":       s.limiter.rejected(),
	}
	checks["suspicious_requests"] = atomic.LoadInt64(&s.suspicious)

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
