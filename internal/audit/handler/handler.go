// Package handler exposes the audit trail read-only over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grcflow/internal/audit"
	"grcflow/pkg/platform/httputil"
)

// Store is the read slice the HTTP layer needs.
type Store interface {
	List(ctx context.Context) ([]audit.Record, error)
}

// Handler lists audit records.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list audit records failed", "error", err)
		httputil.WriteError(w, err, "Failed to fetch audit logs")
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	httputil.WriteList(w, records)
}
