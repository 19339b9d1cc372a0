package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"debttrack/internal/log"
	"debttrack/internal/services"
)

func (s *Server) handleAccountAnalytics(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.analytics.AccountAnalytics(r.Context(), userIDFrom(r.Context()), accountID)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	lookback, err := queryInt(r, "lookback", 1, 24)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	scenarios, err := s.analytics.Scenarios(r.Context(), userIDFrom(r.Context()), accountID, lookback)
	if err != nil {
		writeServiceError(w, r, log.OpSimulate, err)
		return
	}
	writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleInterestHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	months, err := queryInt(r, "months", 1, 120)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h, err := s.analytics.InterestHistory(r.Context(), userIDFrom(r.Context()), accountID, months)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleAccountChart(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	kind := services.ChartKind(mux.Vars(r)["kind"])
	series, err := s.analytics.AccountChart(r.Context(), userIDFrom(r.Context()), accountID, kind)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ref, err := s.export.ExportScenarios(r.Context(), userIDFrom(r.Context()), accountID)
	if err != nil {
		writeServiceError(w, r, log.OpExport, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	overall, err := s.analytics.Portfolio(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, overall)
}

func (s *Server) handlePortfolioTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := s.analytics.PortfolioTrends(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handlePortfolioBalances(w http.ResponseWriter, r *http.Request) {
	series, err := s.analytics.PortfolioBalances(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
