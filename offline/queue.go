// Package offline persists mutating requests that failed purely due to
// connectivity, so the intent survives a restart and can be replayed
// later. The queue guarantees durability and FIFO order of entries, not
// eventual delivery: replay is caller-driven, never automatic.
package offline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/medisync/clinic-client/store"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Mutation is one queued write: the raw request payload plus enqueue
// metadata. Entries are appended by a failed write and removed only by
// a later successful replay; they are never partially updated.
type Mutation struct {
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt int64           `json:"enqueued_at"`
}

// Queue is a durable FIFO list of mutations under a single queue_* key.
type Queue struct {
	backend store.Store
	key     string
}

// New creates a Queue persisted under key, e.g. "queue_bookings".
func New(backend store.Store, key string) *Queue {
	return &Queue{backend: backend, key: key}
}

// Append adds a mutation holding payload to the tail of the queue and
// returns it.
func (q *Queue) Append(ctx context.Context, payload any) (*Mutation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "[Queue.Append] marshal payload")
	}
	entries, err := q.Entries(ctx)
	if err != nil {
		return nil, err
	}
	m := Mutation{
		ID:         uuid.New().String(),
		Payload:    json.RawMessage(raw),
		EnqueuedAt: NowTimeFunc().Unix(),
	}
	entries = append(entries, m)
	if err := q.save(ctx, entries); err != nil {
		return nil, err
	}
	return &m, nil
}

// Entries returns the queued mutations in enqueue order. An absent
// queue reads as empty.
func (q *Queue) Entries(ctx context.Context) ([]Mutation, error) {
	raw, err := q.backend.Get(ctx, q.key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Queue.Entries] read queue")
	}
	var entries []Mutation
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrap(err, "[Queue.Entries] parse queue")
	}
	return entries, nil
}

// Len returns the number of queued mutations.
func (q *Queue) Len(ctx context.Context) (int, error) {
	entries, err := q.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Remove deletes the mutation with the given ID, typically after a
// successful replay. Removing an unknown ID is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	entries, err := q.Entries(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return q.save(ctx, kept)
}

func (q *Queue) save(ctx context.Context, entries []Mutation) error {
	if len(entries) == 0 {
		return errors.Wrap(q.backend.Remove(ctx, q.key), "[Queue.save] remove empty queue")
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "[Queue.save] marshal queue")
	}
	return errors.Wrap(q.backend.Set(ctx, q.key, string(raw)), "[Queue.save] store queue")
}
