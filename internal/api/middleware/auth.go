package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gramsight/dashboard/internal/api/workspace"
)

// Context keys set by the middleware in this package.
const (
	WorkspaceKey = "workspace"
	RoleKey      = "role"
)

// ScopeCookie names the cookie that identifies a client's workspace.
const ScopeCookie = "gs_scope"

const scopeCookieMaxAge = 30 * 24 * time.Hour

// WorkspaceSource resolves a scope id to its workspace.
type WorkspaceSource interface {
	Get(ctx context.Context, id string) (*workspace.Workspace, error)
}

// Scope loads the caller's workspace from the scope cookie, issuing a new
// scope when the cookie is missing or malformed, and injects the workspace
// and current role into the context.
func Scope(src WorkspaceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(ScopeCookie); err == nil {
				if u, err := uuid.Parse(ck.Value); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ScopeCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(scopeCookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ws, err := src.Get(c.Request().Context(), id)
			if err != nil {
				return err
			}

			c.Set(WorkspaceKey, ws)
			c.Set(RoleKey, string(ws.Session.Current().Role))
			return next(c)
		}
	}
}

// Authenticated rejects requests whose workspace holds no session, real or
// demo. It must run after Scope.
func Authenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ws, _ := c.Get(WorkspaceKey).(*workspace.Workspace)
			if ws == nil || !ws.Session.Current().Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}
			return next(c)
		}
	}
}
