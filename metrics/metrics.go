// Package metrics defines the instrumentation port for the request
// pipeline and its implementations.
package metrics

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// RecordCall records one completed pipeline call and its outcome
	// ("success", "transport_failure", "auth_failure", "server_failure",
	// "client_failure", "cache_fallback", "queued").
	RecordCall(path string, outcome string)
	// RecordRefresh records a coalesced token refresh attempt.
	RecordRefresh(success bool)
	// RecordCacheFallback records a cache lookup after a transport
	// failure on a cache-eligible read.
	RecordCacheFallback(hit bool)
	// RecordQueuedMutation records a write accepted into the offline
	// queue.
	RecordQueuedMutation()
}
