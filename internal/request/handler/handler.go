// Package handler exposes the coordinator's CRUD surface over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"grcflow/internal/request"
	"grcflow/pkg/platform/httputil"
	"grcflow/pkg/platform/sentinel"
)

// Service defines the coordinator operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, in request.CreateInput) (request.Request, error)
	Update(ctx context.Context, id uuid.UUID, in request.UpdateInput) (request.Request, error)
	Delete(ctx context.Context, id uuid.UUID) (request.Request, error)
	Get(ctx context.Context, id uuid.UUID) (request.Request, error)
	List(ctx context.Context) ([]request.Request, error)
}

// Handler is the thin HTTP layer over the request service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the request routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.handleCreate)
	r.Get("/requests", h.handleList)
	r.Get("/requests/{id}", h.handleGet)
	r.Put("/requests/{id}", h.handleUpdate)
	r.Delete("/requests/{id}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in request.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, sentinel.ErrInvalidInput, "invalid request body")
		return
	}

	created, err := h.service.Create(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "create request failed", "error", err)
		httputil.WriteError(w, err, "Failed to create request")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "Request created", created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list requests failed", "error", err)
		httputil.WriteError(w, err, "Failed to fetch requests")
		return
	}
	if requests == nil {
		requests = []request.Request{}
	}
	httputil.WriteList(w, requests)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "Request not found")
		return
	}
	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err, "Request not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "Request found", found)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "Request not found")
		return
	}

	var in request.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, sentinel.ErrInvalidInput, "invalid request body")
		return
	}

	updated, err := h.service.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, err, "Request not found")
			return
		}
		h.logger.ErrorContext(ctx, "update request failed", "request_id", id, "error", err)
		httputil.WriteError(w, err, "Failed to update request")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "Request updated", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound, "Request not found")
		return
	}

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, err, "Request not found")
			return
		}
		h.logger.ErrorContext(ctx, "delete request failed", "request_id", id, "error", err)
		httputil.WriteError(w, err, "Failed to delete request")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "Request deleted", deleted)
}
