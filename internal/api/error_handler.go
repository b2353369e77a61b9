package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/infrastructure/gateway"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error    string `json:"error"`
	Navigate string `json:"navigate,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain and backend errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrInvalidSession):
		return http.StatusUnauthorized, errorResponse{Error: "session expired", Navigate: string(domain.DestinationLogin)}
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, errorResponse{Error: "role must be farmer or admin"}
	case errors.Is(err, domain.ErrNoSelection):
		return http.StatusConflict, errorResponse{Error: "no village selected"}
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadGateway, errorResponse{Error: "backend returned an invalid response"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "backend did not answer in time"}
	}

	// Backend rejections are surfaced to the caller; 4xx keep their code so
	// forms can show them, 5xx become a bad gateway.
	var se *gateway.StatusError
	if errors.As(err, &se) {
		msg := se.Body
		if msg == "" {
			msg = http.StatusText(se.Status)
		}
		if se.Status >= 400 && se.Status < 500 {
			return se.Status, errorResponse{Error: msg}
		}
		log.Warn().
			Err(err).
			Str("path", c.Path()).
			Msg("backend error")
		return http.StatusBadGateway, errorResponse{Error: "backend unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
