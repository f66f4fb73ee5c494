package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		GesturesTotal,
		ItemMovesTotal,
		LoginLinksTotal,
		OutboxPublishTotal,
		SSEClientsCurrent,
		HTTPRequestDuration,
	}
	for _, c := range collectors {
		desc := make(chan *prometheus.Desc, 1)
		c.Describe(desc)
		close(desc)
		require.NotNil(t, <-desc)
	}
}

func TestCounters(t *testing.T) {
	c := GesturesTotal.WithLabelValues("test", "committed")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))

	SSEClientsCurrent.Inc()
	SSEClientsCurrent.Dec()
	assert.Equal(t, float64(0), testutil.ToFloat64(SSEClientsCurrent))
}
