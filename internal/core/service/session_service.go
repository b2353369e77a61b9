package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/api/metrics"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// Keys used inside the session's scoped store.
const (
	TokenKey = "token"
	RoleKey  = "role"
)

// TokenDecoder turns a credential into claims. It must not panic.
type TokenDecoder interface {
	Decode(raw string) (domain.Claims, bool)
}

// SessionService holds the credential, role and decoded identity of one
// client session and keeps them in step with the scoped store.
type SessionService struct {
	store   ports.KeyValueStore
	decoder TokenDecoder
	backend ports.Backend
	log     zerolog.Logger

	mu       sync.RWMutex
	cred     string
	role     domain.Role
	identity *domain.Identity
	loading  bool

	onEnd func()
}

// NewSessionService returns a session in the loading state. Call Restore
// once to load the persisted credential. backend may be nil when only
// Login/LoginDemo are used.
func NewSessionService(store ports.KeyValueStore, decoder TokenDecoder, backend ports.Backend, log zerolog.Logger) *SessionService {
	return &SessionService{
		store:   store,
		decoder: decoder,
		backend: backend,
		log:     log,
		loading: true,
	}
}

// OnEnd registers fn to run whenever the active session ends, either by
// logout or by a different credential replacing it. fn runs with the session
// lock held and must not call back into the session. Set it before Restore.
func (s *SessionService) OnEnd(fn func()) { s.onEnd = fn }

func (s *SessionService) ended() {
	if s.onEnd != nil {
		s.onEnd()
	}
}

// Restore rebuilds the session from the persisted keys. A credential that no
// longer decodes is cleared rather than reported.
func (s *SessionService) Restore(ctx context.Context) error {
	cred, _, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("session: restore token: %w", err)
	}
	rawRole, _, err := s.store.Get(ctx, RoleKey)
	if err != nil {
		return fmt.Errorf("session: restore role: %w", err)
	}
	role, _ := domain.ParseRole(rawRole)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = cred
	s.role = role
	if err := s.derive(ctx); err != nil && !errors.Is(err, domain.ErrInvalidSession) {
		return err
	}
	return nil
}

// Login stores a backend-issued credential with the chosen role.
func (s *SessionService) Login(ctx context.Context, credential string, role domain.Role) error {
	if credential == "" {
		return domain.ErrInvalidCredentials
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, credential, role); err != nil {
		return err
	}
	if s.cred != "" && s.cred != credential {
		s.ended()
	}
	s.cred = credential
	s.role = role
	return s.derive(ctx)
}

// LoginDemo enters the demo session for role without contacting the backend.
func (s *SessionService) LoginDemo(ctx context.Context, role domain.Role) error {
	return s.Login(ctx, domain.DemoCredential, role)
}

// Logout clears the persisted keys and the in-memory session. Calling it
// on an empty session is a no-op.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx)
}

// Invalidate logs out only if credential is still the active one, so a
// late authorization failure cannot end a newer session.
func (s *SessionService) Invalidate(ctx context.Context, credential string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if credential == "" || s.cred != credential {
		return false, nil
	}
	return true, s.clear(ctx)
}

// Authenticate exchanges email and password for a credential. Backend
// errors are returned unchanged for the login form to display.
func (s *SessionService) Authenticate(ctx context.Context, email, password string, role domain.Role) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}
	if s.backend == nil {
		return fmt.Errorf("session: authenticate: no backend configured")
	}
	tok, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.Login(ctx, tok, role)
}

// Register creates an account and signs into it.
func (s *SessionService) Register(ctx context.Context, email, password string, role domain.Role) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}
	if s.backend == nil {
		return fmt.Errorf("session: register: no backend configured")
	}
	tok, err := s.backend.Register(ctx, email, password, role)
	if err != nil {
		return err
	}
	return s.Login(ctx, tok, role)
}

// Credential returns the active credential and whether it is the demo one.
func (s *SessionService) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.cred == domain.DemoCredential
}

// Current returns a copy of the session state.
func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := domain.Session{
		Credential: s.cred,
		Role:       s.role,
		Loading:    s.loading,
	}
	if s.identity != nil {
		id := *s.identity
		out.Identity = &id
	}
	return out
}

// persist must be called with mu held. When the token write fails the role
// key is put back to the active session's role so the store never pairs a
// new role with an old credential.
func (s *SessionService) persist(ctx context.Context, credential string, role domain.Role) error {
	if err := s.store.Set(ctx, RoleKey, string(role)); err != nil {
		return fmt.Errorf("session: persist role: %w", err)
	}
	if err := s.store.Set(ctx, TokenKey, credential); err != nil {
		if rerr := s.rollbackRole(ctx); rerr != nil {
			s.log.Warn().Err(rerr).Msg("role key left behind after failed token write")
		}
		return fmt.Errorf("session: persist token: %w", err)
	}
	return nil
}

func (s *SessionService) rollbackRole(ctx context.Context) error {
	if s.cred == "" || s.role == "" {
		return s.store.Del(ctx, RoleKey)
	}
	return s.store.Set(ctx, RoleKey, string(s.role))
}

// clear must be called with mu held.
func (s *SessionService) clear(ctx context.Context) error {
	s.cred = ""
	s.role = ""
	s.identity = nil
	s.loading = false
	s.ended()
	if err := s.store.Del(ctx, TokenKey, RoleKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// derive recomputes identity from cred and role. It must be called with mu
// held, after every credential change.
func (s *SessionService) derive(ctx context.Context) error {
	defer func() { s.loading = false }()

	switch s.cred {
	case "":
		s.role = ""
		s.identity = nil
		return nil
	case domain.DemoCredential:
		if s.role == "" {
			s.role = domain.RoleFarmer
		}
		s.identity = &domain.Identity{Subject: domain.DemoSubject, Role: s.role, Demo: true}
		return nil
	}

	claims, ok := s.decoder.Decode(s.cred)
	if !ok {
		s.log.Warn().Str("role", string(s.role)).Msg("stored credential is not decodable, forcing logout")
		metrics.ForcedLogoutsTotal.WithLabelValues("decode_failure").Inc()
		if err := s.clear(ctx); err != nil {
			return err
		}
		return domain.ErrInvalidSession
	}

	if s.role == "" {
		if r, err := domain.ParseRole(claims.Role); err == nil {
			s.role = r
		}
	}
	s.identity = &domain.Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      s.role,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
	if s.identity.Email == "" {
		s.identity.Email = claims.Subject
	}
	return nil
}
