package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	assignmentsTotal *prometheus.CounterVec
	nearestDistance  prometheus.Histogram
	pushSuccess      prometheus.Counter
	pushFailure      prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Counter, prometheus.Counter) {
	asn := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Number of assignment attempts by outcome",
		},
		[]string{"result"},
	)
	dist := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_nearest_distance_km",
			Help:    "Distance to the selected technician in kilometers",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
		},
	)
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_notify_success_total",
			Help: "Number of successful push notification deliveries",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_notify_failure_total",
			Help: "Number of failed push notification deliveries",
		},
	)
	return asn, dist, suc, fail
}

func init() {
	assignmentsTotal, nearestDistance, pushSuccess, pushFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assignmentsTotal, nearestDistance, pushSuccess, pushFailure)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	assignmentsTotal, nearestDistance, pushSuccess, pushFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
