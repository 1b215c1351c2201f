package offline_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/offline"
	"github.com/medisync/clinic-client/store"
)

type booking struct {
	DoctorID int64  `json:"doctor_id"`
	Reason   string `json:"reason"`
}

func TestAppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	q := offline.New(store.NewMemory(), "queue_bookings")

	first, err := q.Append(ctx, booking{DoctorID: 1, Reason: "w1"})
	require.NoError(t, err)
	second, err := q.Append(ctx, booking{DoctorID: 2, Reason: "w2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	entries, err := q.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var got booking
	require.NoError(t, json.Unmarshal(entries[0].Payload, &got))
	assert.Equal(t, "w1", got.Reason, "W1 enqueued before W2 stays first")
	require.NoError(t, json.Unmarshal(entries[1].Payload, &got))
	assert.Equal(t, "w2", got.Reason)
}

func TestQueueSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	backend, err := store.NewFile(path)
	require.NoError(t, err)
	q := offline.New(backend, "queue_bookings")
	_, err = q.Append(ctx, booking{DoctorID: 1, Reason: "w1"})
	require.NoError(t, err)
	_, err = q.Append(ctx, booking{DoctorID: 2, Reason: "w2"})
	require.NoError(t, err)

	// Reopening the backing file models a process restart.
	reopened, err := store.NewFile(path)
	require.NoError(t, err)
	entries, err := offline.New(reopened, "queue_bookings").Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var got booking
	require.NoError(t, json.Unmarshal(entries[0].Payload, &got))
	assert.Equal(t, "w1", got.Reason, "restart does not lose or reorder entries")
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	q := offline.New(backend, "queue_bookings")

	first, err := q.Append(ctx, booking{Reason: "w1"})
	require.NoError(t, err)
	second, err := q.Append(ctx, booking{Reason: "w2"})
	require.NoError(t, err)

	require.NoError(t, q.Remove(ctx, first.ID))
	entries, err := q.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)

	// Unknown IDs are a no-op.
	require.NoError(t, q.Remove(ctx, "nope"))

	require.NoError(t, q.Remove(ctx, second.ID))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// An emptied queue leaves no key behind.
	_, err = backend.Get(ctx, "queue_bookings")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestEmptyQueue(t *testing.T) {
	ctx := context.Background()
	q := offline.New(store.NewMemory(), "queue_bookings")

	entries, err := q.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
