// Package gateway is the single path for outbound backend calls. It attaches
// the session credential, bounds every call with a timeout, and classifies
// responses into ok / unauthorized / forbidden / error outcomes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/api/metrics"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

const (
	defaultTimeout = 8 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Kind   ports.OutcomeKind
	Status int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Unwrap lets callers match authorization failures with errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.Kind {
	case ports.OutcomeUnauthorized:
		return domain.ErrUnauthorized
	case ports.OutcomeForbidden:
		return domain.ErrForbidden
	}
	return nil
}

// Gateway wraps an http.Client with credential handling.
type Gateway struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	validate *validator.Validate
	log      zerolog.Logger

	creds    ports.CredentialSource
	outcomes ports.OutcomeHandler
}

// New builds a Gateway. Bind must be called before the first authenticated
// request.
func New(cfg Config, log zerolog.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Gateway{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   client,
		timeout:  timeout,
		validate: validator.New(),
		log:      log,
	}
}

// Bind connects the gateway to the session it authenticates as and to the
// handler that reacts to authorization outcomes. Either may be nil.
func (g *Gateway) Bind(creds ports.CredentialSource, outcomes ports.OutcomeHandler) {
	g.creds = creds
	g.outcomes = outcomes
}

// Do performs an authenticated JSON request. out may be nil.
func (g *Gateway) Do(ctx context.Context, method, path string, in, out any) error {
	return g.do(ctx, method, path, in, out, true)
}

// DoPublic performs a request that never carries the session credential and
// whose 401/403 responses do not affect the session (login, register).
func (g *Gateway) DoPublic(ctx context.Context, method, path string, in, out any) error {
	return g.do(ctx, method, path, in, out, false)
}

func (g *Gateway) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var cred string
	var demo bool
	if authenticated && g.creds != nil {
		cred, demo = g.creds.Credential()
		if cred != "" && !demo {
			req.Header.Set("Authorization", "Bearer "+cred)
		}
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.GatewayOutcomesTotal.WithLabelValues(string(ports.OutcomeError)).Inc()
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.GatewayOutcomesTotal.WithLabelValues(string(ports.OutcomeError)).Inc()
		return fmt.Errorf("gateway: read %s %s: %w", method, path, err)
	}

	kind := classify(resp.StatusCode)
	metrics.GatewayOutcomesTotal.WithLabelValues(string(kind)).Inc()
	g.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if kind != ports.OutcomeOK {
		if authenticated && g.outcomes != nil && (kind == ports.OutcomeUnauthorized || kind == ports.OutcomeForbidden) {
			g.outcomes.HandleOutcome(ctx, ports.Outcome{
				Kind:       kind,
				Status:     resp.StatusCode,
				Path:       path,
				Credential: cred,
				Demo:       demo,
			})
		}
		return &StatusError{
			Kind:   kind,
			Status: resp.StatusCode,
			Method: method,
			Path:   path,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w: %v", method, path, domain.ErrInvalidPayload, err)
	}
	if err := g.check(out); err != nil {
		return fmt.Errorf("gateway: validate %s %s: %w: %v", method, path, domain.ErrInvalidPayload, err)
	}
	return nil
}

func classify(status int) ports.OutcomeKind {
	switch {
	case status >= 200 && status < 300:
		return ports.OutcomeOK
	case status == http.StatusUnauthorized:
		return ports.OutcomeUnauthorized
	case status == http.StatusForbidden:
		return ports.OutcomeForbidden
	default:
		return ports.OutcomeError
	}
}

// check validates a decoded payload: structs directly, slices element-wise.
func (g *Gateway) check(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return g.validate.Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if el := v.Index(i); el.Kind() == reflect.Struct {
				if err := g.validate.Struct(el.Interface()); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
		}
	}
	return nil
}
