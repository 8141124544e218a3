// Package handler exposes the notifier's records read-only over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grcflow/internal/notification"
	"grcflow/pkg/platform/httputil"
)

// Store is the read slice the HTTP layer needs.
type Store interface {
	List(ctx context.Context) ([]notification.Record, error)
}

// Handler lists notification records.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the notification routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list notifications failed", "error", err)
		httputil.WriteError(w, err, "Failed to fetch notifications")
		return
	}
	if records == nil {
		records = []notification.Record{}
	}
	httputil.WriteList(w, records)
}
