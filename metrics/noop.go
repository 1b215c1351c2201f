package metrics

// Noop is the Recorder used when metrics are disabled. All methods are
// safe to call and do nothing.
type Noop struct{}

// NewNoop creates a no-op recorder.
func NewNoop() *Noop {
	return &Noop{}
}

// RecordCall is a no-op.
func (n *Noop) RecordCall(path string, outcome string) {}

// RecordRefresh is a no-op.
func (n *Noop) RecordRefresh(success bool) {}

// RecordCacheFallback is a no-op.
func (n *Noop) RecordCacheFallback(hit bool) {}

// RecordQueuedMutation is a no-op.
func (n *Noop) RecordQueuedMutation() {}

var _ Recorder = (*Noop)(nil)
