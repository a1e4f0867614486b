package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// errorBody is the JSON shape of every non-2xx response. Details is only
// populated for validation failures and lists every violated field.
type errorBody struct {
	Error   string           `json:"error"`
	Details []core.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorBody{Error: message})
}

// writeServiceError maps domain errors onto HTTP statuses: validation
// failures become 422 with per-field details, missing rows become 404,
// everything else is a 500 with the detail kept out of the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verrs, ok := core.AsValidationErrors(err); ok {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorBody{
			Error:   "validation failed",
			Details: verrs,
		})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	slog.ErrorContext(r.Context(), "Request failed", "error", err, "method", r.Method, "url", r.URL.Path)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
