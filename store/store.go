// Package store defines the key-value persistence port shared by the
// credential store, the read-through cache and the offline queue, plus
// the backends that implement it.
package store

import (
	"context"

	"github.com/pkg/errors"
)

// Well-known keys and key prefixes. Credentials live under the bare
// token keys; cached payloads and queued mutations are namespaced so a
// shared backend never mixes them up.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"

	CachePrefix = "cache_"
	QueuePrefix = "queue_"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is persistent string key-value storage. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
}
