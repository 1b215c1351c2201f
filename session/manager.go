package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medisync/clinic-client/store"
)

var (
	// ErrNoSession means no token pair is stored; the user is logged out.
	ErrNoSession = errors.New("session: not authenticated")
	// ErrSessionExpired means a refresh failed and the session was
	// cleared; the caller must re-authenticate.
	ErrSessionExpired = errors.New("session: expired")
)

// RefreshFunc exchanges a refresh token for a new token pair via the
// backend. The request pipeline supplies it so the manager never
// depends on the transport directly.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Session, error)

// Manager mediates all access to the token pair. Mutation goes through
// Set, Refresh and Clear only, so no other component ever holds a stale
// copy.
type Manager struct {
	creds   store.Store
	refresh RefreshFunc
	log     zerolog.Logger

	lock     sync.Mutex
	inflight *refreshCall
}

// refreshCall is one coalesced refresh. Concurrent callers wait on done
// and share the outcome.
type refreshCall struct {
	done    chan struct{}
	session *Session
	err     error
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a Manager over the given credential store.
func NewManager(creds store.Store, refresh RefreshFunc, options ...ManagerOption) (*Manager, error) {
	if creds == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}
	if refresh == nil {
		return nil, errors.New("[NewManager] refresh func is required")
	}
	m := &Manager{
		creds:   creds,
		refresh: refresh,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Current returns the stored token pair, or ErrNoSession.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	access, err := m.creds.Get(ctx, store.KeyAccessToken)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "[Manager.Current] read access token")
	}
	refresh, err := m.creds.Get(ctx, store.KeyRefreshToken)
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return nil, errors.Wrap(err, "[Manager.Current] read refresh token")
	}
	return &Session{AccessToken: access, RefreshToken: refresh}, nil
}

// Set persists a new token pair, replacing any previous one.
func (m *Manager) Set(ctx context.Context, s *Session) error {
	if err := m.creds.Set(ctx, store.KeyAccessToken, s.AccessToken); err != nil {
		return errors.Wrap(err, "[Manager.Set] store access token")
	}
	if err := m.creds.Set(ctx, store.KeyRefreshToken, s.RefreshToken); err != nil {
		return errors.Wrap(err, "[Manager.Set] store refresh token")
	}
	return nil
}

// Attach injects the current access token as a bearer credential.
// No-op when no token is stored, so unauthenticated calls pass through
// untouched.
func (m *Manager) Attach(ctx context.Context, header http.Header) error {
	access, err := m.creds.Get(ctx, store.KeyAccessToken)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil
		}
		return errors.Wrap(err, "[Manager.Attach] read access token")
	}
	header.Set("Authorization", "Bearer "+access)
	return nil
}

// Authenticated reports whether a token pair is stored. It says nothing
// about whether the backend still accepts it.
func (m *Manager) Authenticated(ctx context.Context) bool {
	_, err := m.creds.Get(ctx, store.KeyAccessToken)
	return err == nil
}

// Refresh exchanges the refresh token for a new pair. Concurrent
// callers coalesce onto one network call and share its outcome: many
// requests observing a 401 at once must not race refreshes and
// invalidate each other's resulting pair. On success the new pair is
// persisted and returned; on failure the session is cleared and
// ErrSessionExpired is returned.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	m.lock.Lock()
	if call := m.inflight; call != nil {
		m.lock.Unlock()
		select {
		case <-call.done:
			return call.session, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.lock.Unlock()

	call.session, call.err = m.doRefresh(ctx)
	close(call.done)

	m.lock.Lock()
	m.inflight = nil
	m.lock.Unlock()

	return call.session, call.err
}

func (m *Manager) doRefresh(ctx context.Context) (*Session, error) {
	refreshToken, err := m.creds.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "[Manager.Refresh] read refresh token")
	}

	next, err := m.refresh(ctx, refreshToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("token refresh failed, clearing session")
		if clearErr := m.Clear(ctx); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("failed to clear session after refresh failure")
		}
		return nil, ErrSessionExpired
	}

	if err := m.Set(ctx, next); err != nil {
		return nil, errors.Wrap(err, "[Manager.Refresh] persist refreshed session")
	}
	m.log.Debug().Msg("session refreshed")
	return next, nil
}

// Clear removes the token pair from the credential store. Idempotent.
func (m *Manager) Clear(ctx context.Context) error {
	err := m.creds.RemoveMany(ctx, []string{store.KeyAccessToken, store.KeyRefreshToken})
	return errors.Wrap(err, "[Manager.Clear] remove tokens")
}
