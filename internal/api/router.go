package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gramsight/dashboard/internal/api/docs"
	"github.com/gramsight/dashboard/internal/api/handler"
	"github.com/gramsight/dashboard/internal/api/middleware"
	"github.com/gramsight/dashboard/internal/core/domain"
	"github.com/gramsight/dashboard/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Workspaces middleware.WorkspaceSource
	// Readiness lists the dependencies probed by /health/ready.
	Readiness map[string]handlers.Pinger
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	// --- Health probes, metrics and docs (no session required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session routes ---
	scope := middleware.Scope(d.Workspaces)
	sessionHandler := handler.NewSessionHandler()
	navigationHandler := handler.NewNavigationHandler()

	e.GET("/session", sessionHandler.Get, scope)
	e.DELETE("/session", sessionHandler.Logout, scope)
	e.POST("/session/login", sessionHandler.Login, scope)
	e.POST("/session/register", sessionHandler.Register, scope)
	e.POST("/session/demo", sessionHandler.Demo, scope)
	e.GET("/navigation", navigationHandler.Take, scope)

	// --- Dashboards ---
	dashboardHandler := handler.NewDashboardHandler()
	dash := e.Group("/dashboard", scope, middleware.Authenticated())

	farmer := dash.Group("/farmer", middleware.RBAC(domain.RoleFarmer))
	farmer.GET("", dashboardHandler.Farmer)
	farmer.GET("/villages", dashboardHandler.Villages)
	farmer.POST("/select", dashboardHandler.Select)
	farmer.POST("/refresh", dashboardHandler.Refresh)

	dash.GET("/admin", dashboardHandler.Admin, middleware.RBAC(domain.RoleAdmin))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
