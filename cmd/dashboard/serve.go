package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gramsight/dashboard/internal/api"
	"github.com/gramsight/dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	e := api.NewRouter(api.Deps{
		Workspaces: rt.registry,
		Readiness:  rt.readiness,
		Log:        logger.Component("http"),
	})

	addr := net.JoinHostPort("", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("backend", cfg.Backend.BaseURL).Msg("dashboard listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
