// Package metrics exposes escrow workflow counters for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EscrowMetrics holds the collectors for the escrow workflow.
type EscrowMetrics struct {
	DonationsCreatedTotal prometheus.Counter
	OrdersCreatedTotal    *prometheus.CounterVec
	SettlementsTotal      *prometheus.CounterVec
	ReleasesTotal         *prometheus.CounterVec
	GatewayDuration       prometheus.Histogram
}

// NewEscrowMetrics registers the collectors on reg.
func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	factory := promauto.With(reg)
	return &EscrowMetrics{
		DonationsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "carefund_donations_created_total",
			Help: "Donations created.",
		}),
		OrdersCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carefund_gateway_orders_total",
			Help: "Gateway order creation attempts by result.",
		}, []string{"result"}),
		SettlementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carefund_settlements_total",
			Help: "Payment settlement callbacks by result.",
		}, []string{"result"}),
		ReleasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carefund_releases_total",
			Help: "Escrow release attempts by result.",
		}, []string{"result"}),
		GatewayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "carefund_gateway_request_duration_seconds",
			Help:    "Latency of payment gateway order calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
