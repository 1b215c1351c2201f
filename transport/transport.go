// Package transport issues HTTP requests to the clinic backend. It
// draws the line the rest of the client relies on: a transport-level
// failure is a non-nil error and no Response; an application-level
// failure is a Response carrying an error status.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout is generous because patients are frequently on slow
// mobile networks. Individual calls may override it.
const DefaultTimeout = 45 * time.Second

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	// Body is JSON-encoded when non-nil.
	Body any
	// Timeout overrides the transport default when positive.
	Timeout time.Duration
}

// Response is the raw outcome of a completed call.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport sends a request and returns a response, or an error when no
// response could be obtained.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

var _ Transport = (*HTTP)(nil)

// HTTP is the net/http backed Transport used in production.
type HTTP struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithClient replaces the underlying http.Client.
func WithClient(c *http.Client) HTTPOption {
	return func(t *HTTP) { t.client = c }
}

// WithDefaultTimeout changes the timeout applied to calls that do not
// carry their own.
func WithDefaultTimeout(d time.Duration) HTTPOption {
	return func(t *HTTP) { t.timeout = d }
}

// NewHTTP creates a Transport rooted at baseURL, e.g.
// "https://clinic.example.com/api/v1".
func NewHTTP(baseURL string, options ...HTTPOption) *HTTP {
	t := &HTTP{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Do issues the request. Timeouts and cancellations surface through the
// returned error's chain (context.DeadlineExceeded, context.Canceled)
// so classification can tell them apart.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := t.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "[HTTP.Do] encode request body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return nil, errors.Wrap(err, "[HTTP.Do] build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}
