package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/validation"

	"grcflow/internal/event"
	"grcflow/pkg/platform/sentinel"
)

// Publisher is the slice of the bus client the coordinator needs.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// CreateInput carries the caller-supplied fields for a new request.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate enforces the required fields.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Description, validation.Required),
	)
}

// UpdateInput carries a partial update; empty fields keep their value.
type UpdateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Service owns the request lifecycle. Persist first, publish second; if the
// publish fails the entity stays persisted and the error surfaces to the
// caller. There is deliberately no compensating delete, so a bus outage
// leaves a request without its lifecycle event.
type Service struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewService(store Store, bus Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, bus: bus, logger: logger}
}

// Create validates, persists with status pending, and publishes the created
// event keyed by the new id.
func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	if err := in.Validate(); err != nil {
		return Request{}, fmt.Errorf("%w: %s", sentinel.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	r := Request{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       in.Title,
		Description: in.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, r); err != nil {
		return Request{}, fmt.Errorf("persist request: %w", err)
	}

	if err := s.publishLifecycle(ctx, r, event.ActionCreated); err != nil {
		return Request{}, err
	}

	s.logger.InfoContext(ctx, "request created", "request_id", r.ID, "title", r.Title)
	return r, nil
}

// Update merges the provided fields into an existing request and republishes
// the lifecycle event.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Request, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if in.Title != "" {
		r.Title = in.Title
	}
	if in.Description != "" {
		r.Description = in.Description
	}
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, r); err != nil {
		return Request{}, fmt.Errorf("persist request: %w", err)
	}

	if err := s.publishLifecycle(ctx, r, event.ActionUpdated); err != nil {
		return Request{}, err
	}

	s.logger.InfoContext(ctx, "request updated", "request_id", r.ID)
	return r, nil
}

// Delete removes the request and publishes a deleted lifecycle event so the
// auditor and worker see deletions too.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (Request, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return Request{}, err
	}
	r.Status = StatusDeleted

	if err := s.publishLifecycle(ctx, r, event.ActionDeleted); err != nil {
		return Request{}, err
	}

	s.logger.InfoContext(ctx, "request deleted", "request_id", r.ID)
	return r, nil
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Request, error) {
	return s.store.FindByID(ctx, id)
}

// List returns all requests in creation order.
func (s *Service) List(ctx context.Context) ([]Request, error) {
	return s.store.List(ctx)
}

func (s *Service) publishLifecycle(ctx context.Context, r Request, action event.RequestAction) error {
	e, err := event.New(event.TopicRequestLifecycle, r.ID.String(), event.RequestPayload{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Status:      string(r.Status),
		Action:      action,
	})
	if err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		// The entity is already persisted; that state is kept. The caller
		// sees the publish failure, the audit trail simply never hears
		// about this change.
		s.logger.ErrorContext(ctx, "lifecycle publish failed after persist",
			"request_id", r.ID,
			"action", action,
			"error", err,
		)
		return fmt.Errorf("publish %s event: %w", action, err)
	}
	return nil
}
