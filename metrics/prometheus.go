package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records pipeline events using Prometheus collectors.
type Prometheus struct {
	callsTotal          *prometheus.CounterVec
	refreshTotal        *prometheus.CounterVec
	cacheFallbackTotal  *prometheus.CounterVec
	queuedMutationTotal prometheus.Counter
}

// NewPrometheus creates a recorder registered on the default registry.
func NewPrometheus() *Prometheus {
	return NewPrometheusWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusWithRegistry creates a recorder on a custom registry.
// Use this for testing.
func NewPrometheusWithRegistry(reg prometheus.Registerer) *Prometheus {
	callsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_client_calls_total",
		Help: "Total pipeline calls by path and outcome",
	}, []string{"path", "outcome"})

	refreshTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_client_token_refresh_total",
		Help: "Total coalesced token refresh attempts",
	}, []string{"result"})

	cacheFallbackTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_client_cache_fallback_total",
		Help: "Total cache fallback lookups after transport failures",
	}, []string{"result"})

	queuedMutationTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clinic_client_queued_mutations_total",
		Help: "Total writes accepted into the offline queue",
	})

	reg.MustRegister(callsTotal, refreshTotal, cacheFallbackTotal, queuedMutationTotal)

	return &Prometheus{
		callsTotal:          callsTotal,
		refreshTotal:        refreshTotal,
		cacheFallbackTotal:  cacheFallbackTotal,
		queuedMutationTotal: queuedMutationTotal,
	}
}

// RecordCall records one completed pipeline call.
func (p *Prometheus) RecordCall(path string, outcome string) {
	p.callsTotal.WithLabelValues(path, outcome).Inc()
}

// RecordRefresh records a token refresh attempt.
func (p *Prometheus) RecordRefresh(success bool) {
	p.refreshTotal.WithLabelValues(result(success)).Inc()
}

// RecordCacheFallback records a cache fallback lookup.
func (p *Prometheus) RecordCacheFallback(hit bool) {
	if hit {
		p.cacheFallbackTotal.WithLabelValues("hit").Inc()
		return
	}
	p.cacheFallbackTotal.WithLabelValues("miss").Inc()
}

// RecordQueuedMutation records an offline-queued write.
func (p *Prometheus) RecordQueuedMutation() {
	p.queuedMutationTotal.Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

var _ Recorder = (*Prometheus)(nil)
