package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/reports"
	"fintrack/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// validationErrs are rejected inputs; each maps to a 400.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrAmountScale,
	core.ErrEmptyDescription,
	core.ErrEmptyName,
	core.ErrEmptyEmail,
	core.ErrInvalidEmail,
	core.ErrEmptyPasswordHash,
	core.ErrInvalidCurrency,
	core.ErrInvalidCategoryType,
	core.ErrNameTooLong,
	core.ErrDescriptionTooLong,
	core.ErrZeroDate,
	core.ErrInvalidSortField,
	reports.ErrInvalidMonth,
	reports.ErrInvalidYear,
	reports.ErrInvalidRange,
}

// writeStoreError maps domain and storage failures onto HTTP statuses:
// missing entity 404, uniqueness clash 409, bad reference or input 400,
// anything else 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrRefNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		for _, verr := range validationErrs {
			if errors.Is(err, verr) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
