package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	// Session reads and writes are single small keys; a short I/O budget
	// keeps a slow server from stalling login or restore.
	sessionIOTimeout = time.Second
)

// Config captures the settings for the session Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds the initial ping. Zero selects a default.
	Timeout time.Duration
}

// Connect opens the session client and refuses to return it until the
// server answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  sessionIOTimeout,
		WriteTimeout: sessionIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := Ping(client)(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping returns a readiness check for client.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}
}
