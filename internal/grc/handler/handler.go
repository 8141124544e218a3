// Package handler exposes the worker's record store over HTTP for
// operational inspection and manual correction.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"grcflow/internal/grc"
	"grcflow/pkg/platform/httputil"
	"grcflow/pkg/platform/sentinel"
)

// Store is the record store slice the HTTP layer needs.
type Store interface {
	Save(ctx context.Context, r grc.Record) error
	FindByID(ctx context.Context, id uuid.UUID) (grc.Record, error)
	List(ctx context.Context) ([]grc.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler is the thin CRUD layer over the worker's compliance records.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the record routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/grc-records", h.handleCreate)
	r.Get("/grc-records", h.handleList)
	r.Get("/grc-records/{id}", h.handleGet)
	r.Put("/grc-records/{id}", h.handleUpdate)
	r.Delete("/grc-records/{id}", h.handleDelete)
}

type recordInput struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Details   string `json:"details"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in recordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, sentinel.ErrInvalidInput, "invalid request body")
		return
	}

	record := grc.Record{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: in.RequestID,
		Status:    in.Status,
		Details:   in.Details,
		CreatedAt: time.Now().UTC(),
	}
	if record.Status == "" {
		record.Status = grc.StatusProcessed
	}
	if err := h.store.Save(r.Context(), record); err != nil {
		h.logger.ErrorContext(r.Context(), "create grc record failed", "error", err)
		httputil.WriteError(w, err, "Failed to create GRC record")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "GRC record created", record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list grc records failed", "error", err)
		httputil.WriteError(w, err, "Failed to fetch GRC records")
		return
	}
	if records == nil {
		records = []grc.Record{}
	}
	httputil.WriteList(w, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "GRC record not found")
		return
	}
	record, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err, "GRC record not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "GRC record found", record)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "GRC record not found")
		return
	}

	var in recordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, sentinel.ErrInvalidInput, "invalid request body")
		return
	}

	record, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err, "GRC record not found")
		return
	}
	if in.RequestID != "" {
		record.RequestID = in.RequestID
	}
	if in.Status != "" {
		record.Status = in.Status
	}
	if in.Details != "" {
		record.Details = in.Details
	}
	if err := h.store.Save(r.Context(), record); err != nil {
		h.logger.ErrorContext(r.Context(), "update grc record failed", "record_id", id, "error", err)
		httputil.WriteError(w, err, "Failed to update GRC record")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "GRC record updated", record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "GRC record not found")
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, err, "GRC record not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "delete grc record failed", "record_id", id, "error", err)
		httputil.WriteError(w, err, "Failed to delete GRC record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
