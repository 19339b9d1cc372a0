// Package http serves the debt analytics JSON API.
//
// This file holds the response builder and the mapping from service
// errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"debttrack/internal/core"
	"debttrack/internal/log"
	"debttrack/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// validationErrors are the domain errors caused by the request content.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidKind,
	core.ErrInvalidRate,
	core.ErrNegativeBalance,
	core.ErrEmptyName,
	core.ErrZeroDate,
}

// statusFor maps a service error to a status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrUnknownChart):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrExportDisabled):
		return http.StatusServiceUnavailable, err.Error()
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, err.Error()
		}
	}
	var ve *validationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, ve.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeServiceError logs unexpected failures and writes the mapped status.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op, log.FieldError, err.Error())
	}
	writeError(w, r, status, msg)
}
