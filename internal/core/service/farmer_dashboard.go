package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gramsight/dashboard/internal/api/metrics"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

// FarmerDashboard aggregates the five per-village sources into one view.
// Rounds overlap freely; only the most recently started round may publish.
type FarmerDashboard struct {
	backend ports.Backend
	log     zerolog.Logger
	now     func() time.Time
	rounds  rounds

	mu       sync.RWMutex
	selected string
	loading  bool
	view     *domain.FarmerView
}

// NewFarmerDashboard returns an aggregator with no selection.
func NewFarmerDashboard(backend ports.Backend, log zerolog.Logger) *FarmerDashboard {
	return &FarmerDashboard{backend: backend, log: log, now: time.Now}
}

// Select makes villageID the current selection and refreshes it.
func (d *FarmerDashboard) Select(ctx context.Context, villageID string) (domain.FarmerView, bool) {
	d.mu.Lock()
	d.selected = villageID
	d.mu.Unlock()
	return d.Refresh(ctx, villageID)
}

// Reload re-runs the whole aggregation for the current selection.
func (d *FarmerDashboard) Reload(ctx context.Context) (domain.FarmerView, bool, error) {
	d.mu.RLock()
	id := d.selected
	d.mu.RUnlock()
	if id == "" {
		return domain.FarmerView{}, false, domain.ErrNoSelection
	}
	view, published := d.Refresh(ctx, id)
	return view, published, nil
}

// Refresh fetches every source for villageID concurrently, waits for all
// of them to settle, and merges the results. Failed or empty sources get
// their fallback value. The merged view is published only if no newer round
// started meanwhile; otherwise it is returned with published=false and the
// dashboard state is left to the newer round.
func (d *FarmerDashboard) Refresh(ctx context.Context, villageID string) (domain.FarmerView, bool) {
	d.mu.Lock()
	g := d.rounds.start()
	d.loading = true
	d.mu.Unlock()

	start := time.Now()
	view := domain.FarmerView{VillageID: villageID, Generation: g}

	// Each goroutine owns one field of view and always returns nil, so one
	// failing source never cancels its siblings.
	var eg errgroup.Group
	eg.Go(func() error {
		p, err := d.backend.Risk(ctx, villageID)
		view.Risk = settle(d.log, villageID, "risk", p, err, riskView, fallbackRisk)
		return nil
	})
	eg.Go(func() error {
		p, err := d.backend.Weather(ctx, villageID)
		view.Weather = settle(d.log, villageID, "weather", p, err, weatherView, fallbackWeather)
		return nil
	})
	eg.Go(func() error {
		p, err := d.backend.Market(ctx, villageID)
		view.Market = settle(d.log, villageID, "market", p, err, marketView, fallbackMarket)
		return nil
	})
	eg.Go(func() error {
		p, err := d.backend.Soil(ctx, villageID)
		view.Soil = settle(d.log, villageID, "soil", p, err, soilView, fallbackSoil)
		return nil
	})
	eg.Go(func() error {
		p, err := d.backend.Advisory(ctx, villageID)
		view.Advisory = settle(d.log, villageID, "advisory", p, err, advisoryView, fallbackAdvisory)
		return nil
	})
	_ = eg.Wait()

	metrics.AggregationDuration.WithLabelValues("farmer").Observe(time.Since(start).Seconds())
	view.RefreshedAt = d.now().UTC()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.rounds.latest(g) {
		metrics.AggregationRoundsTotal.WithLabelValues("farmer", "stale").Inc()
		d.log.Debug().Str("village_id", villageID).Uint64("generation", g).Msg("discarding superseded round")
		return view, false
	}

	d.view = &view
	d.loading = false
	metrics.AggregationRoundsTotal.WithLabelValues("farmer", "published").Inc()
	return view, true
}

// State returns what the presentation layer should render right now.
func (d *FarmerDashboard) State() domain.FarmerState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st := domain.FarmerState{SelectedID: d.selected, Loading: d.loading}
	if d.view != nil {
		v := *d.view
		st.View = &v
	}
	return st
}

// Reset forgets the selection and the published view. Rounds started before
// the reset become stale and are discarded when they settle.
func (d *FarmerDashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rounds.start()
	d.selected = ""
	d.loading = false
	d.view = nil
}

// Villages lists the villages for the selector, falling back to the demo
// list when the backend is unavailable.
func (d *FarmerDashboard) Villages(ctx context.Context) domain.Field[[]domain.Village] {
	rows, err := d.backend.FarmerVillages(ctx)
	if err != nil || len(rows) == 0 {
		if err != nil {
			d.log.Warn().Err(err).Msg("village list unavailable, using fallback")
		}
		metrics.SourceFetchesTotal.WithLabelValues("villages", "fallback").Inc()
		return domain.Fallback(fallbackVillages())
	}
	metrics.SourceFetchesTotal.WithLabelValues("villages", "live").Inc()
	return domain.Present(villages(rows))
}

// settle turns one source's result into its view model field.
func settle[P, V any](
	log zerolog.Logger,
	villageID, source string,
	payload *P,
	err error,
	transform func(*P) (V, bool),
	fallback func() V,
) domain.Field[V] {
	if err != nil {
		log.Warn().Err(err).Str("village_id", villageID).Str("source", source).Msg("source fetch failed, using fallback")
		metrics.SourceFetchesTotal.WithLabelValues(source, "fallback").Inc()
		return domain.Fallback(fallback())
	}
	if v, ok := transform(payload); ok {
		metrics.SourceFetchesTotal.WithLabelValues(source, "live").Inc()
		return domain.Present(v)
	}
	metrics.SourceFetchesTotal.WithLabelValues(source, "fallback").Inc()
	return domain.Fallback(fallback())
}
