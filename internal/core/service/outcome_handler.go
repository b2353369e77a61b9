package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/api/metrics"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// OutcomeHandler is the single reaction point for authorization outcomes
// reported by the request gateway.
//
//   - Unauthorized on a real session: invalidate it and navigate to login.
//   - Unauthorized on a demo session: ignored, there is no backend session.
//   - Forbidden: navigate to access-denied, session kept.
type OutcomeHandler struct {
	sessions ports.SessionService
	nav      ports.Navigator
	log      zerolog.Logger
}

func NewOutcomeHandler(sessions ports.SessionService, nav ports.Navigator, log zerolog.Logger) *OutcomeHandler {
	return &OutcomeHandler{sessions: sessions, nav: nav, log: log}
}

func (h *OutcomeHandler) HandleOutcome(ctx context.Context, o ports.Outcome) {
	switch o.Kind {
	case ports.OutcomeUnauthorized:
		if o.Demo || o.Credential == "" {
			return
		}
		invalidated, err := h.sessions.Invalidate(ctx, o.Credential)
		if err != nil {
			h.log.Error().Err(err).Str("path", o.Path).Msg("failed to clear rejected session")
		}
		if !invalidated {
			// A newer session replaced the rejected credential meanwhile.
			return
		}
		metrics.ForcedLogoutsTotal.WithLabelValues("unauthorized").Inc()
		h.log.Info().Str("path", o.Path).Msg("credential rejected by backend, session cleared")
		h.nav.Navigate(ctx, domain.DestinationLogin)

	case ports.OutcomeForbidden:
		h.log.Info().Str("path", o.Path).Msg("access denied by backend")
		h.nav.Navigate(ctx, domain.DestinationAccessDenied)
	}
}
