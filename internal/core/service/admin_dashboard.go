package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gramsight/dashboard/internal/api/metrics"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// AdminDashboard builds the village risk overview for administrators.
type AdminDashboard struct {
	backend ports.Backend
	log     zerolog.Logger
	now     func() time.Time
	rounds  rounds

	mu   sync.RWMutex
	view *domain.AdminView
}

func NewAdminDashboard(backend ports.Backend, log zerolog.Logger) *AdminDashboard {
	return &AdminDashboard{backend: backend, log: log, now: time.Now}
}

// Refresh fetches the village listing and derives alerts and stats. A
// failed listing yields the demo villages. Superseded rounds are discarded.
func (d *AdminDashboard) Refresh(ctx context.Context) (domain.AdminView, bool) {
	g := d.rounds.start()
	start := time.Now()

	var rows domain.Field[[]domain.Village]
	payload, err := d.backend.AdminVillages(ctx)
	switch {
	case err != nil:
		d.log.Warn().Err(err).Msg("admin village list unavailable, using fallback")
		metrics.SourceFetchesTotal.WithLabelValues("villages", "fallback").Inc()
		rows = domain.Fallback(fallbackVillages())
	case len(payload) == 0:
		metrics.SourceFetchesTotal.WithLabelValues("villages", "fallback").Inc()
		rows = domain.Fallback(fallbackVillages())
	default:
		metrics.SourceFetchesTotal.WithLabelValues("villages", "live").Inc()
		rows = domain.Present(villages(payload))
	}

	sorted, alerts, stats := overview(rows.Value)
	rows.Value = sorted
	view := domain.AdminView{
		Generation:  g,
		Villages:    rows,
		Alerts:      alerts,
		Stats:       stats,
		RefreshedAt: d.now().UTC(),
	}
	metrics.AggregationDuration.WithLabelValues("admin").Observe(time.Since(start).Seconds())

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.rounds.latest(g) {
		metrics.AggregationRoundsTotal.WithLabelValues("admin", "stale").Inc()
		return view, false
	}
	d.view = &view
	metrics.AggregationRoundsTotal.WithLabelValues("admin", "published").Inc()
	return view, true
}

// Reset drops the published overview and outdates rounds in flight.
func (d *AdminDashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rounds.start()
	d.view = nil
}

// Current returns the last published overview, if any.
func (d *AdminDashboard) Current() (domain.AdminView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.view == nil {
		return domain.AdminView{}, false
	}
	return *d.view, true
}
