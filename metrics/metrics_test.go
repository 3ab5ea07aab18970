package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEscrowMetricsCountByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEscrowMetrics(reg)

	m.SettlementsTotal.WithLabelValues("settled").Inc()
	m.SettlementsTotal.WithLabelValues("settled").Inc()
	m.SettlementsTotal.WithLabelValues("invalid_signature").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("invalid_signature")))
}

func TestEscrowMetricsSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewEscrowMetrics(prometheus.NewRegistry())
		NewEscrowMetrics(prometheus.NewRegistry())
	})
}
