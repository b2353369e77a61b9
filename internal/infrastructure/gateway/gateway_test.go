package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/core/ports"
)

type fixedCreds struct {
	token string
}

func (c fixedCreds) Credential() (string, bool) {
	return c.token, c.token == domain.DemoCredential
}

type recordingOutcomes struct {
	mu       sync.Mutex
	outcomes []ports.Outcome
}

func (r *recordingOutcomes) HandleOutcome(_ context.Context, o ports.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingOutcomes) all() []ports.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Outcome(nil), r.outcomes...)
}

// newTestClient serves handler and returns a client bound to token.
func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *recordingOutcomes) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, zerolog.Nop())
	rec := &recordingOutcomes{}
	gw.Bind(fixedCreds{token: token}, rec)
	return NewClient(gw), rec
}

func TestGateway_AttachesBearerForRealSession(t *testing.T) {
	var got capture
	c, _ := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
		got.set("auth", r.Header.Get("Authorization"))
		got.set("path", r.URL.Path)
		_, _ = w.Write([]byte(`{"risk":{"score":41,"category":"moderate"},"explanation":"dry week"}`))
	})

	p, err := c.Risk(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "Bearer real-token", got.get("auth"))
	assert.Equal(t, "/farmer/12/risk", got.get("path"))
	require.NotNil(t, p.Risk)
	assert.Equal(t, 41.0, *p.Risk.Score)
	assert.Equal(t, "dry week", *p.Explanation)
}

func TestGateway_NoHeaderForDemoOrEmptySession(t *testing.T) {
	for _, token := range []string{domain.DemoCredential, ""} {
		t.Run("token="+token, func(t *testing.T) {
			var got capture
			c, _ := newTestClient(t, token, func(w http.ResponseWriter, r *http.Request) {
				got.set("auth", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(`{"items":["a"]}`))
			})

			_, err := c.Advisory(context.Background(), "1")
			require.NoError(t, err)
			assert.Empty(t, got.get("auth"))
		})
	}
}

func TestGateway_ReportsAuthorizationOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		status int
		kind   ports.OutcomeKind
		target error
	}{
		{"unauthorized", "real-token", http.StatusUnauthorized, ports.OutcomeUnauthorized, domain.ErrUnauthorized},
		{"forbidden", "real-token", http.StatusForbidden, ports.OutcomeForbidden, domain.ErrForbidden},
		{"demo unauthorized", domain.DemoCredential, http.StatusUnauthorized, ports.OutcomeUnauthorized, domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, tt.token, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.AdminVillages(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			got := rec.all()
			require.Len(t, got, 1)
			assert.Equal(t, tt.kind, got[0].Kind)
			assert.Equal(t, tt.status, got[0].Status)
			assert.Equal(t, "/admin/villages", got[0].Path)
			assert.Equal(t, tt.token, got[0].Credential)
			assert.Equal(t, tt.token == domain.DemoCredential, got[0].Demo)
		})
	}
}

func TestGateway_ServerErrorPropagated(t *testing.T) {
	c, rec := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Weather(context.Background(), "1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, ports.OutcomeError, se.Kind)
	assert.Equal(t, "boom", se.Body)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Empty(t, rec.all(), "5xx must not reach the outcome handler")
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	gw := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	c := NewClient(gw)

	start := time.Now()
	_, err := c.Soil(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGateway_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *Client) error
	}{
		{"malformed json", `{"markets":`, func(c *Client) error { _, err := c.Market(context.Background(), "1"); return err }},
		{"humidity out of range", `{"weather":{"temperature":20,"humidity":140}}`, func(c *Client) error { _, err := c.Weather(context.Background(), "1"); return err }},
		{"market without commodity", `{"markets":[{"price":10}]}`, func(c *Client) error { _, err := c.Market(context.Background(), "1"); return err }},
		{"village without name", `[{"id":1}]`, func(c *Client) error { _, err := c.FarmerVillages(context.Background()); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			assert.ErrorIs(t, tt.call(c), domain.ErrInvalidPayload)
		})
	}
}

func TestGateway_EmptyBody(t *testing.T) {
	c, _ := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	p, err := c.Soil(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, p.Nitrogen)
}

func TestClient_VillagesAcceptNumericIDs(t *testing.T) {
	c, _ := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"name":"Wai","risk_score":34},{"id":"v-9","name":"Nira"}]`))
	})

	rows, err := c.AdminVillages(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ports.EntityID("3"), rows[0].ID)
	assert.Equal(t, ports.EntityID("v-9"), rows[1].ID)
	assert.Nil(t, rows[1].RiskScore)
}

func TestClient_EscapesVillageID(t *testing.T) {
	var got capture
	c, _ := newTestClient(t, "real-token", func(w http.ResponseWriter, r *http.Request) {
		got.set("path", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.Risk(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/farmer/a%2Fb/risk", got.get("path"))
}

func TestClient_Login(t *testing.T) {
	var got capture
	c, rec := newTestClient(t, "old-token", func(w http.ResponseWriter, r *http.Request) {
		var body ports.LoginRequest
		_ = decodeJSON(r, &body)
		got.set("auth", r.Header.Get("Authorization"))
		got.set("email", body.Email)
		if body.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"new-token"}`))
	})

	tok, err := c.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "new-token", tok)
	assert.Empty(t, got.get("auth"), "login must not carry the session credential")
	assert.Equal(t, "a@example.com", got.get("email"))

	_, err = c.Login(context.Background(), "a@example.com", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, rec.all(), "a failed login must not end the current session")
}

func TestClient_LoginMissingToken(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.Login(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestClient_Register(t *testing.T) {
	var got capture
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		var body ports.RegisterRequest
		_ = decodeJSON(r, &body)
		got.set("path", r.URL.Path)
		got.set("content-type", r.Header.Get("Content-Type"))
		got.set("role", body.Role)
		_, _ = w.Write([]byte(`{"access_token":"t"}`))
	})

	tok, err := c.Register(context.Background(), "b@example.com", "pw", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "t", tok)
	assert.Equal(t, "admin", got.get("role"))
	assert.Equal(t, "/auth/register", got.get("path"))
	assert.Equal(t, "application/json", got.get("content-type"))
}
