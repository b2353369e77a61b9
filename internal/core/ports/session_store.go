package ports

import "context"

// KeyValueStore is the scoped persistent store backing a client session.
// Get reports found=false for a missing key without an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}
