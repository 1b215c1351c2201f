package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/store"
)

func setupTestRedis(t *testing.T) *store.Redis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)
	return store.NewRedis(mr.Addr())
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	backend := setupTestRedis(t)

	_, err := backend.Get(ctx, "absent")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	require.NoError(t, backend.Set(ctx, "cache_patient_profile", `{"id":7}`))
	v, err := backend.Get(ctx, "cache_patient_profile")
	require.NoError(t, err)
	assert.Equal(t, `{"id":7}`, v)

	require.NoError(t, backend.Remove(ctx, "cache_patient_profile"))
	_, err = backend.Get(ctx, "cache_patient_profile")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestRedisStoreRemoveMany(t *testing.T) {
	ctx := context.Background()
	backend := setupTestRedis(t)

	require.NoError(t, backend.Set(ctx, "access_token", "at"))
	require.NoError(t, backend.Set(ctx, "refresh_token", "rt"))
	require.NoError(t, backend.RemoveMany(ctx, []string{"access_token", "refresh_token"}))

	_, err := backend.Get(ctx, "access_token")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = backend.Get(ctx, "refresh_token")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	assert.NoError(t, backend.RemoveMany(ctx, nil))
}
