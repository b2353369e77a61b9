package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errSource = errors.New("source unavailable")

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

// ---------------------------------------------------------------------------
// Backend stub
// ---------------------------------------------------------------------------

type stubBackend struct {
	loginFn    func(ctx context.Context, email, password string) (string, error)
	registerFn func(ctx context.Context, email, password string, role domain.Role) (string, error)

	riskFn     func(ctx context.Context, id string) (*ports.RiskPayload, error)
	weatherFn  func(ctx context.Context, id string) (*ports.WeatherPayload, error)
	marketFn   func(ctx context.Context, id string) (*ports.MarketPayload, error)
	soilFn     func(ctx context.Context, id string) (*ports.SoilPayload, error)
	advisoryFn func(ctx context.Context, id string) (*ports.AdvisoryPayload, error)

	farmerVillagesFn func(ctx context.Context) ([]ports.VillagePayload, error)
	adminVillagesFn  func(ctx context.Context) ([]ports.VillagePayload, error)
}

// liveBackend answers every source with a usable payload.
func liveBackend() *stubBackend {
	return &stubBackend{
		riskFn: func(context.Context, string) (*ports.RiskPayload, error) {
			return &ports.RiskPayload{Risk: &ports.RiskScore{Score: f64(35.4)}, Explanation: str("mild conditions")}, nil
		},
		weatherFn: func(context.Context, string) (*ports.WeatherPayload, error) {
			return &ports.WeatherPayload{Weather: &ports.WeatherSummary{Temperature: f64(30)}}, nil
		},
		marketFn: func(context.Context, string) (*ports.MarketPayload, error) {
			return &ports.MarketPayload{Markets: []ports.MarketEntry{{Commodity: "wheat", Price: f64(2500)}}}, nil
		},
		soilFn: func(context.Context, string) (*ports.SoilPayload, error) {
			return &ports.SoilPayload{Nitrogen: f64(55), PH: f64(7.1)}, nil
		},
		advisoryFn: func(context.Context, string) (*ports.AdvisoryPayload, error) {
			return &ports.AdvisoryPayload{Items: []string{"Irrigate in the evening."}}, nil
		},
	}
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (string, error) {
	if b.loginFn == nil {
		return "", errSource
	}
	return b.loginFn(ctx, email, password)
}

func (b *stubBackend) Register(ctx context.Context, email, password string, role domain.Role) (string, error) {
	if b.registerFn == nil {
		return "", errSource
	}
	return b.registerFn(ctx, email, password, role)
}

func (b *stubBackend) Risk(ctx context.Context, id string) (*ports.RiskPayload, error) {
	if b.riskFn == nil {
		return nil, errSource
	}
	return b.riskFn(ctx, id)
}

func (b *stubBackend) Weather(ctx context.Context, id string) (*ports.WeatherPayload, error) {
	if b.weatherFn == nil {
		return nil, errSource
	}
	return b.weatherFn(ctx, id)
}

func (b *stubBackend) Market(ctx context.Context, id string) (*ports.MarketPayload, error) {
	if b.marketFn == nil {
		return nil, errSource
	}
	return b.marketFn(ctx, id)
}

func (b *stubBackend) Soil(ctx context.Context, id string) (*ports.SoilPayload, error) {
	if b.soilFn == nil {
		return nil, errSource
	}
	return b.soilFn(ctx, id)
}

func (b *stubBackend) Advisory(ctx context.Context, id string) (*ports.AdvisoryPayload, error) {
	if b.advisoryFn == nil {
		return nil, errSource
	}
	return b.advisoryFn(ctx, id)
}

func (b *stubBackend) FarmerVillages(ctx context.Context) ([]ports.VillagePayload, error) {
	if b.farmerVillagesFn == nil {
		return nil, errSource
	}
	return b.farmerVillagesFn(ctx)
}

func (b *stubBackend) AdminVillages(ctx context.Context) ([]ports.VillagePayload, error) {
	if b.adminVillagesFn == nil {
		return nil, errSource
	}
	return b.adminVillagesFn(ctx)
}

// ---------------------------------------------------------------------------
// Store and decoder stubs
// ---------------------------------------------------------------------------

type mapStore struct {
	mu     sync.Mutex
	values map[string]string
	delErr error
	setErr error

	// setErrKey limits setErr to one key when set.
	setErrKey string
}

func newMapStore() *mapStore { return &mapStore{values: map[string]string{}} }

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil && (s.setErrKey == "" || s.setErrKey == key) {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *mapStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *mapStore) snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// stubDecoder decodes only the tokens it knows.
type stubDecoder map[string]domain.Claims

func (d stubDecoder) Decode(raw string) (domain.Claims, bool) {
	c, ok := d[raw]
	return c, ok
}

// recordingNav remembers every navigation request.
type recordingNav struct {
	mu    sync.Mutex
	dests []domain.Destination
}

func (n *recordingNav) Navigate(_ context.Context, d domain.Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dests = append(n.dests, d)
}

func (n *recordingNav) all() []domain.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Destination(nil), n.dests...)
}
