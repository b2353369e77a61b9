package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gramsight/dashboard/internal/api/middleware"
	"github.com/gramsight/dashboard/internal/api/workspace"
)

// currentWorkspace extracts the workspace injected by the Scope middleware.
// Its absence means the route was registered without Scope.
func currentWorkspace(c echo.Context) (*workspace.Workspace, error) {
	ws, _ := c.Get(middleware.WorkspaceKey).(*workspace.Workspace)
	if ws == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "missing client scope")
	}
	return ws, nil
}

// roundContext detaches an aggregation round from the request. A client that
// goes away must not turn every source into a fallback; the gateway's
// per-request timeout still bounds the round.
func roundContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}
