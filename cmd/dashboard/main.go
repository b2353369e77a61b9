// Command dashboard runs the GramSight dashboard service and offers a few
// operator commands that exercise the same session and aggregation code.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gramsight/dashboard/internal/api/workspace"
	"github.com/gramsight/dashboard/internal/core/ports"
	"github.com/gramsight/dashboard/internal/infrastructure/db/memory"
	redisstore "github.com/gramsight/dashboard/internal/infrastructure/db/redis"
	"github.com/gramsight/dashboard/internal/infrastructure/gateway"
	"github.com/gramsight/dashboard/internal/infrastructure/http/handlers"
	"github.com/gramsight/dashboard/internal/infrastructure/token"
	"github.com/gramsight/dashboard/internal/pkg/config"
	"github.com/gramsight/dashboard/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "dashboard",
	Short:         "GramSight dashboard service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return err
		}
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.Pretty(),
			Service: "gramsight-dashboard",
			Output:  os.Stderr,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(villagesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime holds the shared wiring built from configuration.
type runtime struct {
	registry  *workspace.Registry
	readiness map[string]handlers.Pinger
	close     func()
}

func buildRuntime(ctx context.Context) (*runtime, error) {
	rt := &runtime{readiness: map[string]handlers.Pinger{}, close: func() {}}

	var stores workspace.StoreProvider
	if cfg.Redis.Enabled {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		rs := redisstore.NewSessionStores(client, cfg.Session.KeyPrefix, cfg.Session.TTL)
		stores = func(scope string) ports.KeyValueStore { return rs.For(scope) }
		rt.readiness["redis"] = redisstore.Ping(client)
		rt.close = func() { closeRedis(client) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
	} else {
		ms := memory.NewSessionStores(cfg.Session.TTL)
		stores = func(scope string) ports.KeyValueStore { return ms.For(scope) }
		log.Warn().Msg("redis disabled, sessions are kept in memory")
	}

	rt.registry = workspace.NewRegistry(workspace.Config{
		Gateway: gateway.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout},
		Stores:  stores,
		Decoder: token.Codec{},
		IdleTTL: cfg.Session.TTL,
	}, logger.Component("workspace"))
	return rt, nil
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Warn().Err(err).Msg("closing redis client")
	}
}
