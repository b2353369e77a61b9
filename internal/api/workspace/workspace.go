// Package workspace wires one client's session, dashboards and navigation
// together. A workspace is identified by an opaque scope id carried in a
// cookie, and its session is persisted under that scope.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/core/ports"
	"github.com/gramsight/dashboard/internal/core/service"
	"github.com/gramsight/dashboard/internal/infrastructure/gateway"
)

// Workspace is everything one client sees.
type Workspace struct {
	ID      string
	Session ports.SessionService
	Farmer  ports.FarmerDashboardService
	Admin   ports.AdminDashboardService
	Nav     *Navigation
}

// StoreProvider returns the persistent store for a scope.
type StoreProvider func(scope string) ports.KeyValueStore

type Config struct {
	Gateway gateway.Config
	Stores  StoreProvider
	Decoder service.TokenDecoder
	// IdleTTL evicts workspaces unused for this long. Zero selects
	// DefaultIdleTTL.
	IdleTTL time.Duration
}

const (
	DefaultIdleTTL   = 24 * time.Hour
	// anonymousIdleTTL caps the life of workspaces without a session, so
	// cookieless traffic cannot pile them up.
	anonymousIdleTTL = 10 * time.Minute
	sweepInterval    = time.Minute
)

type entry struct {
	ws   *Workspace
	seen time.Time
}

// Registry builds workspaces on first use and evicts them once idle. An
// evicted workspace is rebuilt from its persisted session on the next
// request.
type Registry struct {
	cfg  Config
	log  zerolog.Logger
	idle time.Duration
	now  func() time.Time

	mu        sync.Mutex
	items     map[string]*entry
	lastSweep time.Time
}

func NewRegistry(cfg Config, log zerolog.Logger) *Registry {
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = DefaultIdleTTL
	}
	return &Registry{cfg: cfg, log: log, idle: idle, now: time.Now, items: make(map[string]*entry)}
}

// Get returns the workspace for id, restoring its session from the store
// the first time it is requested. Building happens outside the registry
// lock; if two requests race, the first one stored wins.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	r.mu.Lock()
	now := r.now()
	r.sweepLocked(now, false)
	if e, ok := r.items[id]; ok {
		e.seen = now
		r.mu.Unlock()
		return e.ws, nil
	}
	r.mu.Unlock()

	ws, err := r.build(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[id]; ok {
		e.seen = r.now()
		return e.ws, nil
	}
	r.items[id] = &entry{ws: ws, seen: r.now()}
	return ws, nil
}

// Sweep evicts every idle workspace now and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now(), true)
}

// Len reports how many workspaces are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry) sweepLocked(now time.Time, force bool) int {
	if !force && now.Sub(r.lastSweep) < sweepInterval {
		return 0
	}
	r.lastSweep = now

	evicted := 0
	for id, e := range r.items {
		limit := r.idle
		if !e.ws.Session.Current().Authenticated() && anonymousIdleTTL < limit {
			limit = anonymousIdleTTL
		}
		if now.Sub(e.seen) > limit {
			delete(r.items, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.log.Debug().Int("evicted", evicted).Int("live", len(r.items)).Msg("idle workspaces evicted")
	}
	return evicted
}

func (r *Registry) build(ctx context.Context, id string) (*Workspace, error) {
	log := r.log.With().Str("scope", id).Logger()

	gw := gateway.New(r.cfg.Gateway, log.With().Str("component", "gateway").Logger())
	client := gateway.NewClient(gw)

	session := service.NewSessionService(r.cfg.Stores(id), r.cfg.Decoder, client, log.With().Str("component", "session").Logger())
	nav := &Navigation{}
	gw.Bind(session, service.NewOutcomeHandler(session, nav, log))

	farmer := service.NewFarmerDashboard(client, log.With().Str("component", "farmer").Logger())
	admin := service.NewAdminDashboard(client, log.With().Str("component", "admin").Logger())
	// Dashboard state belongs to the session that produced it.
	session.OnEnd(func() {
		farmer.Reset()
		admin.Reset()
	})

	if err := session.Restore(ctx); err != nil {
		return nil, fmt.Errorf("workspace %s: %w", id, err)
	}

	return &Workspace{
		ID:      id,
		Session: session,
		Farmer:  farmer,
		Admin:   admin,
		Nav:     nav,
	}, nil
}
