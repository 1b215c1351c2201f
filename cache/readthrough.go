// Package cache keeps the last-known-good response for a small set of
// idempotent reads so they stay available under connectivity loss. The
// cache is strictly a last resort: it is never consulted before a live
// attempt and a cache read never triggers a network call.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/medisync/clinic-client/store"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrMiss means no entry exists for the requested key; the caller
// propagates the live failure instead.
var ErrMiss = errors.New("cache: no entry")

// Entry is one cached payload. Entries are overwritten wholesale on
// every successful fetch and never explicitly destroyed; stale entries
// are superseded by the next success.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	WrittenAt int64           `json:"written_at"`
}

// ReadThrough stores and serves Entry values under cache_* keys.
type ReadThrough struct {
	backend store.Store
}

// New creates a ReadThrough over the given backend.
func New(backend store.Store) *ReadThrough {
	return &ReadThrough{backend: backend}
}

// Put overwrites the entry for key with the raw response payload.
func (c *ReadThrough) Put(ctx context.Context, key string, value []byte) error {
	entry := Entry{
		Key:       key,
		Value:     json.RawMessage(value),
		WrittenAt: NowTimeFunc().Unix(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "[ReadThrough.Put] marshal entry")
	}
	return errors.Wrap(c.backend.Set(ctx, key, string(raw)), "[ReadThrough.Put] store entry")
}

// Fallback returns the cached payload for key, or ErrMiss. The entry's
// age is not surfaced; the caller receives the value exactly as the
// live call would have returned it.
func (c *ReadThrough) Fallback(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrMiss
		}
		return nil, errors.Wrap(err, "[ReadThrough.Fallback] read entry")
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, errors.Wrap(err, "[ReadThrough.Fallback] parse entry")
	}
	return entry.Value, nil
}
