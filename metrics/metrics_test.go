package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/metrics"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusWithRegistry(reg)

	rec.RecordCall("/patients/me", "success")
	rec.RecordCall("/patients/me", "success")
	rec.RecordCall("/patients/me", "cache_fallback")
	rec.RecordRefresh(true)
	rec.RecordRefresh(false)
	rec.RecordCacheFallback(true)
	rec.RecordQueuedMutation()

	families, err := reg.Gather()
	require.NoError(t, err)

	totals := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			totals[fam.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), totals["clinic_client_calls_total"])
	assert.Equal(t, float64(2), totals["clinic_client_token_refresh_total"])
	assert.Equal(t, float64(1), totals["clinic_client_cache_fallback_total"])
	assert.Equal(t, float64(1), totals["clinic_client_queued_mutations_total"])
}

func TestNoopRecorder(t *testing.T) {
	rec := metrics.NewNoop()
	rec.RecordCall("/patients/me", "success")
	rec.RecordRefresh(true)
	rec.RecordCacheFallback(false)
	rec.RecordQueuedMutation()
}
