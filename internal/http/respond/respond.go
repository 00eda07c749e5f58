// Package respond writes JSON responses and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/apperror"
	"github.com/MrJamesThe3rd/finplan/internal/budget"
	"github.com/MrJamesThe3rd/finplan/internal/goal"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/onboarding"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Message writes a client error with a fixed message.
func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, errorResponse{Error: msg})
}

// Error writes err with the status its kind maps to. Server errors are logged
// and their details are not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int("status", status).Msg("request failed")
		Message(w, r, status, http.StatusText(status))

		return
	}

	Message(w, r, status, err.Error())
}

// Status maps an error to an HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, goal.ErrNotFound),
		errors.Is(err, onboarding.ErrNotFound),
		errors.Is(err, budget.ErrNoAnalysis):
		return http.StatusNotFound
	case errors.Is(err, onboarding.ErrConcurrentRun),
		errors.Is(err, onboarding.ErrStaleStep),
		errors.Is(err, onboarding.ErrInvalidTransition):
		return http.StatusConflict
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BudgetID reads the {budgetID} path parameter.
func BudgetID(r *http.Request) (uuid.UUID, bool) {
	return PathID(r, "budgetID")
}

// PathID parses a uuid path parameter.
func PathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
