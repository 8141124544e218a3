package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the bus client return
// these (optionally wrapped) so services and handlers can decide, per kind,
// whether a failure is user-caused, terminal, or transient.
//
// - ErrNotFound: entity does not exist in store (never retried)
// - ErrInvalidInput: caller-supplied data failed validation (never retried)
// - ErrConflict: write collided with existing state
// - ErrUnavailable: broker or store temporarily unreachable; inside a
//   consumer handler this is the one kind that must fail the handler so the
//   record is redelivered
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
)
