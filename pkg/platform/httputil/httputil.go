// Package httputil centralizes the JSON envelopes all four services speak:
// {message, data} on success, {error} or {error, details} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"grcflow/pkg/platform/sentinel"
)

// WriteJSON renders a success envelope. A nil data omits the field.
func WriteJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"message": message}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteList renders a bare JSON array, matching the list endpoints.
func WriteList(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError translates sentinel errors into status codes. Validation
// failures keep their details; internal failures expose only the given
// message so store internals stay out of responses.
func WriteError(w http.ResponseWriter, err error, message string) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
	case errors.Is(err, sentinel.ErrInvalidInput):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "details": err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "details": err.Error()})
	}
}
