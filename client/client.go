// Package client is the single entry point for all domain calls to the
// clinic backend. Its request pipeline enforces the cross-cutting
// policy every call shares: bearer attachment, a single coalesced token
// refresh followed by exactly one retry on 401, failure classification,
// cached-read fallback and offline queuing of eligible writes.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medisync/clinic-client/apierror"
	"github.com/medisync/clinic-client/cache"
	"github.com/medisync/clinic-client/metrics"
	"github.com/medisync/clinic-client/offline"
	"github.com/medisync/clinic-client/session"
	"github.com/medisync/clinic-client/store"
	"github.com/medisync/clinic-client/transport"
	"github.com/medisync/clinic-client/types"
)

// Keys for the cache-eligible reads and queue-eligible writes. Keeping
// the set narrow is deliberate: only reads whose last-known-good value
// is still useful offline, and only the booking flow's write.
const (
	CacheKeyUpcomingAppointments = store.CachePrefix + "upcoming_appointments"
	CacheKeyPatientProfile       = store.CachePrefix + "patient_profile"
	QueueKeyBookings             = store.QueuePrefix + "bookings"
)

// Stores holds the persistence backends the client depends on. The
// credential store carries the token pair; the cache store carries
// cache_* entries and queue_* lists.
type Stores struct {
	Credentials store.Store
	Cache       store.Store
}

// Client is the request pipeline plus the domain endpoint catalog.
type Client struct {
	transport transport.Transport
	session   *session.Manager
	cache     *cache.ReadThrough
	metrics   metrics.Recorder
	log       zerolog.Logger
	stores    Stores
	nowTime   func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Client) { c.metrics = rec }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) { c.nowTime = nowFunc }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, stores Stores, options ...Option) (*Client, error) {
	if stores.Credentials == nil {
		return nil, errors.New("[New] credential store is required")
	}
	if stores.Cache == nil {
		return nil, errors.New("[New] cache store is required")
	}

	c := &Client{
		transport: transport.NewHTTP(baseURL),
		cache:     cache.New(stores.Cache),
		metrics:   metrics.NewNoop(),
		log:       zerolog.Nop(),
		stores:    stores,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	mgr, err := session.NewManager(stores.Credentials, c.refreshSession, session.WithLogger(c.log))
	if err != nil {
		return nil, errors.Wrap(err, "[New] session manager")
	}
	c.session = mgr
	return c, nil
}

// Session exposes the session manager, for callers that need to inspect
// or clear the current session directly.
func (c *Client) Session() *session.Manager {
	return c.session
}

// refreshSession is the dedicated backend exchange behind the session
// manager's single-flight refresh. It bypasses the pipeline: a refresh
// must never attach the stale access token or recurse into another
// refresh.
func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*session.Session, error) {
	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		c.metrics.RecordRefresh(false)
		return nil, apierror.FromTransport(err)
	}
	if !resp.OK() {
		c.metrics.RecordRefresh(false)
		return nil, apierror.FromResponse(resp.Status, resp.Body, true)
	}
	var pair types.LoginResponse
	if err := json.Unmarshal(resp.Body, &pair); err != nil {
		c.metrics.RecordRefresh(false)
		return nil, errors.Wrap(err, "[Client.refreshSession] decode refresh response")
	}
	c.metrics.RecordRefresh(true)
	return &session.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// CallSpec describes one pipeline call. A non-empty CacheKey marks a
// cache-eligible read; a non-empty QueueKey marks a queue-eligible
// write. Default is neither.
type CallSpec struct {
	Method   string
	Path     string
	Body     any
	Timeout  time.Duration
	CacheKey string
	QueueKey string
}

// Call runs spec through the pipeline and decodes a successful JSON
// response into out (out may be nil). Failures come back as
// *apierror.Error; a queued write comes back as *QueuedError.
func (c *Client) Call(ctx context.Context, spec CallSpec, out any) error {
	resp, err := c.exchange(ctx, spec)
	if err != nil {
		var cerr *apierror.Error
		if errors.As(err, &cerr) && cerr.Kind == apierror.TransportFailure && cerr.Retriable {
			return c.degrade(ctx, spec, out, cerr)
		}
		c.metrics.RecordCall(spec.Path, outcome(err))
		return err
	}

	if spec.CacheKey != "" {
		if perr := c.cache.Put(ctx, spec.CacheKey, resp.Body); perr != nil {
			c.log.Warn().Err(perr).Str("key", spec.CacheKey).Msg("cache write failed")
		}
	}
	c.metrics.RecordCall(spec.Path, "success")
	return c.decode(resp.Body, out)
}

// exchange performs the live attempt: attach token, send, and on 401
// run the guarded refresh-and-retry. No call is retried more than once,
// so a backend that rejects even fresh tokens cannot loop the client.
func (c *Client) exchange(ctx context.Context, spec CallSpec) (*transport.Response, error) {
	resp, err := c.send(ctx, spec)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		_, rerr := c.session.Refresh(ctx)
		switch {
		case rerr == nil:
			// Retry the original call exactly once with the new token.
			retryResp, retryErr := c.send(ctx, spec)
			if retryErr != nil {
				return nil, retryErr
			}
			if !retryResp.OK() {
				return nil, apierror.FromResponse(retryResp.Status, retryResp.Body, true)
			}
			c.log.Debug().Str("path", spec.Path).Msg("call retried after token refresh")
			return retryResp, nil
		case errors.Is(rerr, session.ErrNoSession):
			// Nothing to refresh with; the 401 stands on its own.
			return nil, apierror.FromResponse(resp.Status, resp.Body, false)
		default:
			// Refresh failed; the session manager has cleared the pair.
			return nil, apierror.FromResponse(resp.Status, resp.Body, true)
		}
	}

	if !resp.OK() {
		return nil, apierror.FromResponse(resp.Status, resp.Body, false)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, spec CallSpec) (*transport.Response, error) {
	header := http.Header{}
	if err := c.session.Attach(ctx, header); err != nil {
		return nil, errors.Wrap(err, "[Client.send] attach credentials")
	}
	resp, err := c.transport.Do(ctx, &transport.Request{
		Method:  spec.Method,
		Path:    spec.Path,
		Header:  header,
		Body:    spec.Body,
		Timeout: spec.Timeout,
	})
	if err != nil {
		return nil, apierror.FromTransport(err)
	}
	return resp, nil
}

// degrade applies the offline policy after a retriable transport
// failure: cached fallback for eligible reads, queuing for eligible
// writes, otherwise the classified failure surfaces. Cancellations
// never reach here.
func (c *Client) degrade(ctx context.Context, spec CallSpec, out any, cerr *apierror.Error) error {
	if spec.CacheKey != "" {
		raw, err := c.cache.Fallback(ctx, spec.CacheKey)
		if err == nil {
			c.metrics.RecordCacheFallback(true)
			c.metrics.RecordCall(spec.Path, "cache_fallback")
			c.log.Info().Str("key", spec.CacheKey).Msg("serving cached response after transport failure")
			return c.decode(raw, out)
		}
		if !errors.Is(err, cache.ErrMiss) {
			c.log.Warn().Err(err).Str("key", spec.CacheKey).Msg("cache fallback lookup failed")
		}
		c.metrics.RecordCacheFallback(false)
	}

	if spec.QueueKey != "" {
		mutation, err := offline.New(c.stores.Cache, spec.QueueKey).Append(ctx, spec.Body)
		if err != nil {
			c.log.Error().Err(err).Str("key", spec.QueueKey).Msg("failed to queue mutation")
			c.metrics.RecordCall(spec.Path, string(cerr.Kind))
			return cerr
		}
		c.metrics.RecordQueuedMutation()
		c.metrics.RecordCall(spec.Path, "queued")
		c.log.Info().Str("key", spec.QueueKey).Str("id", mutation.ID).Msg("mutation queued for replay")
		return &QueuedError{Mutation: mutation, cause: cerr}
	}

	c.metrics.RecordCall(spec.Path, string(cerr.Kind))
	return cerr
}

func (c *Client) decode(raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "[Client.decode] decode response")
}

func outcome(err error) string {
	var cerr *apierror.Error
	if errors.As(err, &cerr) {
		return string(cerr.Kind)
	}
	return "error"
}
