package client

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/medisync/clinic-client/offline"
)

// QueuedError signals that a queue-eligible write could not reach the
// backend and was durably queued instead. It is a degraded acceptance,
// not a plain failure: callers can proceed optimistically and replay
// later.
type QueuedError struct {
	Mutation *offline.Mutation
	cause    error
}

func (e *QueuedError) Error() string {
	return fmt.Sprintf("request queued for replay (id %s): %v", e.Mutation.ID, e.cause)
}

// Unwrap exposes the transport failure that caused the queuing.
func (e *QueuedError) Unwrap() error { return e.cause }

// IsQueued reports whether err signals a queued write.
func IsQueued(err error) bool {
	var qerr *QueuedError
	return errors.As(err, &qerr)
}
