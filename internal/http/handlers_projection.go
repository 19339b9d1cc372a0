package http

import (
	"net/http"

	"debttrack/internal/cache"
	"debttrack/internal/projection"
)

type simulateRequest struct {
	Balance        *float64 `json:"balance" validate:"required,gte=0"`
	AnnualRate     *float64 `json:"annual_rate" validate:"required,gte=0,lte=100"`
	MonthlyPayment *float64 `json:"monthly_payment" validate:"required"`
}

type requiredPaymentRequest struct {
	Balance      *float64 `json:"balance" validate:"required,gte=0"`
	AnnualRate   *float64 `json:"annual_rate" validate:"required,gte=0,lte=100"`
	TargetMonths *int     `json:"target_months" validate:"required,lte=600"`
}

// requiredPaymentResponse carries the solved payment and, when it solved,
// the simulation of paying exactly that amount.
type requiredPaymentResponse struct {
	projection.RequiredPayment
	Projection *projection.PayoffProjection `json:"projection,omitempty"`
}

// handleSimulate runs the amortization simulator. Domain failures such as
// a payment below the monthly interest are part of the 200 response.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	key := cache.Key("simulate", *req.Balance, *req.AnnualRate, *req.MonthlyPayment)
	result, _ := s.simCache.GetOrCompute(key, func() (projection.PayoffProjection, error) {
		return projection.Simulate(*req.Balance, *req.AnnualRate, *req.MonthlyPayment), nil
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRequiredPayment(w http.ResponseWriter, r *http.Request) {
	var req requiredPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	key := cache.Key("required", *req.Balance, *req.AnnualRate, *req.TargetMonths)
	result, _ := s.requiredCache.GetOrCompute(key, func() (requiredPaymentResponse, error) {
		resp := requiredPaymentResponse{
			RequiredPayment: projection.SolveRequiredPayment(*req.Balance, *req.AnnualRate, *req.TargetMonths),
		}
		if resp.Error == "" && resp.MonthlyPayment > 0 {
			p := projection.Simulate(*req.Balance, *req.AnnualRate, resp.MonthlyPayment)
			resp.Projection = &p
		}
		return resp, nil
	})
	writeJSON(w, http.StatusOK, result)
}

// writeDecodeError answers 422 for rule violations and 400 otherwise.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := err.(*validationError); ok {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, r, http.StatusBadRequest, err.Error())
}
