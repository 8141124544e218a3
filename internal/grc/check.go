package grc

import (
	"fmt"
	"strings"

	"grcflow/internal/event"
)

// Verdict is the outcome of one compliance check.
type Verdict struct {
	RequestID string
	Details   string
}

// CheckFunc is the pluggable compliance check: a pure function from the
// lifecycle payload to a verdict. Returning an error is a business outcome
// (the request failed compliance), not an infrastructure failure; the
// worker routes it to dead-letter rather than failing consumption.
type CheckFunc func(payload event.RequestPayload) (Verdict, error)

// DefaultCheck derives a verdict deterministically from the payload. A
// request without a description has nothing to assess and fails the check.
func DefaultCheck(payload event.RequestPayload) (Verdict, error) {
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		return Verdict{}, fmt.Errorf("request %s has no description to assess", payload.ID)
	}
	return Verdict{
		RequestID: payload.ID,
		Details:   description,
	}, nil
}
