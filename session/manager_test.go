package session_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/session"
	"github.com/medisync/clinic-client/store"
)

func newManager(t *testing.T, creds store.Store, refresh session.RefreshFunc) *session.Manager {
	t.Helper()
	m, err := session.NewManager(creds, refresh)
	require.NoError(t, err)
	return m
}

func TestNewManagerValidation(t *testing.T) {
	refresh := func(context.Context, string) (*session.Session, error) { return nil, nil }

	_, err := session.NewManager(nil, refresh)
	require.Error(t, err)

	_, err = session.NewManager(store.NewMemory(), nil)
	require.Error(t, err)
}

func TestSetAndCurrent(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()
	m := newManager(t, creds, func(context.Context, string) (*session.Session, error) {
		return nil, errors.New("unused")
	})

	_, err := m.Current(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.False(t, m.Authenticated(ctx))

	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at-1", RefreshToken: "rt-1"}))
	sess, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-1", sess.AccessToken)
	assert.Equal(t, "rt-1", sess.RefreshToken)
	assert.True(t, m.Authenticated(ctx))
}

func TestAttach(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()
	m := newManager(t, creds, func(context.Context, string) (*session.Session, error) {
		return nil, errors.New("unused")
	})

	// Unauthenticated calls pass through untouched.
	header := http.Header{}
	require.NoError(t, m.Attach(ctx, header))
	assert.Empty(t, header.Get("Authorization"))

	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at-1", RefreshToken: "rt-1"}))
	header = http.Header{}
	require.NoError(t, m.Attach(ctx, header))
	assert.Equal(t, "Bearer at-1", header.Get("Authorization"))
}

func TestRefreshSingleFlight(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()

	var networkCalls atomic.Int32
	refresh := func(_ context.Context, refreshToken string) (*session.Session, error) {
		networkCalls.Add(1)
		assert.Equal(t, "rt-old", refreshToken)
		// Hold the call open long enough for every concurrent caller
		// to join the in-flight refresh.
		time.Sleep(100 * time.Millisecond)
		return &session.Session{AccessToken: "at-new", RefreshToken: "rt-new"}, nil
	}

	m := newManager(t, creds, refresh)
	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at-old", RefreshToken: "rt-old"}))

	const callers = 10
	results := make([]*session.Session, callers)
	errs := make([]error, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = m.Refresh(ctx)
		}(i)
	}
	start.Done()
	done.Wait()

	assert.Equal(t, int32(1), networkCalls.Load(), "exactly one network refresh for N concurrent callers")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "at-new", results[i].AccessToken)
		assert.Equal(t, "rt-new", results[i].RefreshToken)
	}

	// The new pair replaced the old one in the store.
	sess, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-new", sess.AccessToken)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()
	m := newManager(t, creds, func(context.Context, string) (*session.Session, error) {
		return nil, errors.New("refresh token rejected")
	})
	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at", RefreshToken: "rt"}))

	_, err := m.Refresh(ctx)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.False(t, m.Authenticated(ctx), "failed refresh clears the session")
}

func TestRefreshConcurrentFailureShared(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()

	var networkCalls atomic.Int32
	m := newManager(t, creds, func(context.Context, string) (*session.Session, error) {
		networkCalls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return nil, errors.New("refresh token rejected")
	})
	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at", RefreshToken: "rt"}))

	const callers = 5
	errs := make([]error, callers)
	var done sync.WaitGroup
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			_, errs[i] = m.Refresh(ctx)
		}(i)
	}
	done.Wait()

	assert.Equal(t, int32(1), networkCalls.Load())
	for i := 0; i < callers; i++ {
		assert.ErrorIs(t, errs[i], session.ErrSessionExpired, "all callers share the same failure")
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, store.NewMemory(), func(context.Context, string) (*session.Session, error) {
		t.Fatal("refresh must not be issued without a refresh token")
		return nil, nil
	})

	_, err := m.Refresh(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestClearIdempotent(t *testing.T) {
	ctx := context.Background()
	creds := store.NewMemory()
	m := newManager(t, creds, func(context.Context, string) (*session.Session, error) {
		return nil, errors.New("unused")
	})
	require.NoError(t, m.Set(ctx, &session.Session{AccessToken: "at", RefreshToken: "rt"}))

	require.NoError(t, m.Clear(ctx))
	require.NoError(t, m.Clear(ctx))
	assert.False(t, m.Authenticated(ctx))
}

func TestExpiresWithin(t *testing.T) {
	key := []byte("test-signing-key")
	sign := func(exp time.Time) string {
		token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
			"sub": "user-1",
			"exp": exp.Unix(),
		})
		signed, err := token.SignedString(key)
		require.NoError(t, err)
		return signed
	}

	fresh := &session.Session{AccessToken: sign(time.Now().Add(time.Hour))}
	assert.False(t, fresh.ExpiresWithin(time.Minute))
	assert.True(t, fresh.ExpiresWithin(2*time.Hour))

	stale := &session.Session{AccessToken: sign(time.Now().Add(-time.Minute))}
	assert.True(t, stale.ExpiresWithin(time.Minute))

	// Unparsable tokens count as expiring.
	opaque := &session.Session{AccessToken: "not-a-jwt"}
	assert.True(t, opaque.ExpiresWithin(time.Minute))
}
