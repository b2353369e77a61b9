package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramsight/dashboard/internal/api/middleware"
	"github.com/gramsight/dashboard/internal/api/workspace"
	"github.com/gramsight/dashboard/internal/core/ports"
	"github.com/gramsight/dashboard/internal/infrastructure/db/memory"
	"github.com/gramsight/dashboard/internal/infrastructure/gateway"
	"github.com/gramsight/dashboard/internal/infrastructure/token"
)

// browser replays the scope cookie like a real client would.
type browser struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func (b *browser) do(method, path, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.doCtx(context.Background(), method, path, body)
}

func (b *browser) doCtx(ctx context.Context, method, path, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.ScopeCookie {
			b.cookie = ck
		}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func signedToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "7",
		"email": "farmer@example.com",
		"iat":   time.Now().Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func newTestBrowser(t *testing.T, backend http.HandlerFunc) *browser {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	stores := memory.NewSessionStores(0)
	reg := workspace.NewRegistry(workspace.Config{
		Gateway: gateway.Config{BaseURL: srv.URL, Timeout: time.Second},
		Stores:  func(scope string) ports.KeyValueStore { return stores.For(scope) },
		Decoder: token.Codec{},
	}, zerolog.Nop())

	return &browser{t: t, e: NewRouter(Deps{Workspaces: reg, Log: zerolog.Nop()})}
}

func failingBackend(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "down", http.StatusInternalServerError)
}

func TestRouter_Health(t *testing.T) {
	b := newTestBrowser(t, failingBackend)

	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/metrics", "").Code)

	rec := b.do(http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GramSight Dashboard API")
}

func TestRouter_DemoFarmerWithBackendDown(t *testing.T) {
	b := newTestBrowser(t, failingBackend)

	rec := b.do(http.MethodPost, "/session/demo", `{"role":"farmer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, b.cookie, "scope cookie must be issued")

	sess := decode(t, b.do(http.MethodGet, "/session", ""))
	assert.Equal(t, true, sess["demo"])
	assert.Equal(t, "farmer", sess["role"])
	assert.NotContains(t, sess, "credential")

	rec = b.do(http.MethodPost, "/dashboard/farmer/select", `{"village_id":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["published"])
	view := body["state"].(map[string]any)["view"].(map[string]any)
	for _, f := range []string{"risk", "weather", "market", "soil", "advisory"} {
		assert.Equal(t, "fallback", view[f].(map[string]any)["status"], f)
	}

	villages := decode(t, b.do(http.MethodGet, "/dashboard/farmer/villages", ""))
	assert.Equal(t, "fallback", villages["villages"].(map[string]any)["status"])

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, "/dashboard/admin", "").Code)
}

func TestRouter_AdminDemo(t *testing.T) {
	b := newTestBrowser(t, failingBackend)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/session/demo", `{"role":"admin"}`).Code)

	rec := b.do(http.MethodGet, "/dashboard/admin", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode(t, rec)["view"].(map[string]any)
	assert.Equal(t, float64(8), view["stats"].(map[string]any)["total_villages"])

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, "/dashboard/farmer", "").Code)
}

func TestRouter_LoginThenRejected(t *testing.T) {
	tok := signedToken(t)
	b := newTestBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"` + tok + `"}`))
		default:
			// Requests issued after the first rejection carry no credential.
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	rec := b.do(http.MethodPost, "/session/login", `{"email":"farmer@example.com","password":"pw","role":"farmer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sess := decode(t, rec)
	assert.Equal(t, true, sess["authenticated"])
	assert.Equal(t, "farmer@example.com", sess["identity"].(map[string]any)["email"])

	rec = b.do(http.MethodPost, "/dashboard/farmer/select", `{"village_id":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", decode(t, rec)["navigate"])

	sess = decode(t, b.do(http.MethodGet, "/session", ""))
	assert.Equal(t, false, sess["authenticated"])
	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/dashboard/farmer", "").Code)
}

func TestRouter_LoginErrors(t *testing.T) {
	b := newTestBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/register":
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	})

	rec := b.do(http.MethodPost, "/session/login", `{"email":"a@example.com","password":"bad","role":"farmer"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])

	rec = b.do(http.MethodPost, "/session/register", `{"email":"a@example.com","password":"secret1","role":"admin"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = b.do(http.MethodPost, "/session/login", `{"email":"nope","password":"","role":"guest"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decode(t, rec)["error"].(string)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "role must be one of")

	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/session/demo", `{"role":"guest"}`).Code)
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	b := newTestBrowser(t, failingBackend)
	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/dashboard/farmer", "").Code)
}

func TestRouter_RefreshWithoutSelection(t *testing.T) {
	b := newTestBrowser(t, failingBackend)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/session/demo", `{"role":"farmer"}`).Code)

	rec := b.do(http.MethodPost, "/dashboard/farmer/refresh", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/dashboard/farmer/select", `{"village_id":"4"}`).Code)
	rec = b.do(http.MethodPost, "/dashboard/farmer/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", decode(t, rec)["state"].(map[string]any)["selected_id"])
}

func TestRouter_LogoutTwice(t *testing.T) {
	b := newTestBrowser(t, failingBackend)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/session/demo", `{"role":"farmer"}`).Code)

	assert.Equal(t, http.StatusNoContent, b.do(http.MethodDelete, "/session", "").Code)
	assert.Equal(t, http.StatusNoContent, b.do(http.MethodDelete, "/session", "").Code)
	assert.Equal(t, false, decode(t, b.do(http.MethodGet, "/session", ""))["authenticated"])
}

func TestRouter_Navigation(t *testing.T) {
	b := newTestBrowser(t, failingBackend)
	nav := decode(t, b.do(http.MethodGet, "/navigation", ""))
	assert.Equal(t, "", nav["destination"])
}

func TestRouter_RoundSurvivesClientDisconnect(t *testing.T) {
	b := newTestBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/farmer/1/risk" {
			_, _ = w.Write([]byte(`{"risk":{"score":55}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/session/demo", `{"role":"farmer"}`).Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := b.doCtx(ctx, http.MethodPost, "/dashboard/farmer/select", `{"village_id":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["published"])
	risk := body["state"].(map[string]any)["view"].(map[string]any)["risk"].(map[string]any)
	assert.Equal(t, "present", risk["status"], "a gone client must not turn live sources into fallbacks")
}
