package ports

import (
	"context"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// OutcomeKind classifies the result of an outbound request.
type OutcomeKind string

const (
	OutcomeOK           OutcomeKind = "ok"
	OutcomeUnauthorized OutcomeKind = "unauthorized"
	OutcomeForbidden    OutcomeKind = "forbidden"
	OutcomeError        OutcomeKind = "error"
)

// Outcome is reported by the request gateway for authorization failures.
// Credential and Demo are captured when the request was issued, so a
// session change while the request was in flight does not alter the reaction.
type Outcome struct {
	Kind       OutcomeKind
	Status     int
	Path       string
	Credential string
	Demo       bool
}

// OutcomeHandler reacts to gateway outcomes. It is the single place that
// turns authorization failures into session and navigation effects.
type OutcomeHandler interface {
	HandleOutcome(ctx context.Context, o Outcome)
}

// Navigator moves the user to another surface.
type Navigator interface {
	Navigate(ctx context.Context, dest domain.Destination)
}
