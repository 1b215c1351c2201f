// Package apierror turns raw transport and HTTP outcomes into one
// classified error consumed uniformly by callers and by the request
// pipeline's retry logic. Classification priority: transport-level
// failures (timeout, cancellation, connectivity) are decided before any
// status-code rule, so a timed-out request is never misreported as a
// server error and a cancelled one never triggers retries.
package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/medisync/clinic-client/types"
)

// Kind is the classification bucket of a failed call.
type Kind string

const (
	// TransportFailure means no response was received at all.
	TransportFailure Kind = "transport_failure"
	// AuthFailure means the backend rejected the credentials (401/403).
	AuthFailure Kind = "auth_failure"
	// ServerFailure means the backend answered with a 5xx status.
	ServerFailure Kind = "server_failure"
	// ClientFailure means the request itself was rejected (other 4xx).
	ClientFailure Kind = "client_failure"
)

// Human-readable messages surfaced to the presentation layer, which
// never inspects raw status codes.
const (
	msgTimeout     = "connection timed out: the server may be slow or unreachable"
	msgCancelled   = "request cancelled"
	msgConnection  = "connection problem: check your network and try again"
	msgSessionGone = "session expired: please sign in again"
	msgServerDown  = "server unavailable: please try again later"
	msgBadRequest  = "invalid request"
)

// Error is a classified call failure. It is created once per failed
// call and never mutated afterwards.
type Error struct {
	Kind      Kind
	Message   string
	Retriable bool
	// Status is the HTTP status when a response was received, 0 for
	// transport-level failures.
	Status int
	cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying transport error, when there is one.
func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on a bare kind sentinel, e.g.
// errors.Is(err, &Error{Kind: AuthFailure}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == kind
}

// FromTransport classifies a transport-level failure, one where no
// response was obtained. Priority order: timeout, explicit
// cancellation, then generic connectivity loss.
func FromTransport(err error) *Error {
	switch {
	case isTimeout(err):
		return &Error{Kind: TransportFailure, Message: msgTimeout, Retriable: true, cause: err}
	case isCancelled(err):
		return &Error{Kind: TransportFailure, Message: msgCancelled, Retriable: false, cause: err}
	default:
		return &Error{Kind: TransportFailure, Message: msgConnection, Retriable: true, cause: err}
	}
}

// FromResponse classifies an application-level failure, one where the
// backend answered with an error status. refreshAttempted marks 401/403
// responses observed after a token refresh already ran for this call;
// such auth failures are final.
func FromResponse(status int, body []byte, refreshAttempted bool) *Error {
	switch {
	case status == 401 || status == 403:
		return &Error{
			Kind:      AuthFailure,
			Message:   detailMessage(body, msgSessionGone),
			Retriable: !refreshAttempted,
			Status:    status,
		}
	case status >= 500:
		return &Error{Kind: ServerFailure, Message: msgServerDown, Retriable: true, Status: status}
	default:
		return &Error{Kind: ClientFailure, Message: detailMessage(body, msgBadRequest), Retriable: false, Status: status}
	}
}

// detailMessage pulls the backend's error-detail field out of the body,
// falling back to the given generic message.
func detailMessage(body []byte, fallback string) string {
	var apiErr types.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
