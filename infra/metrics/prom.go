package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/motofix/fieldops/core/metrics"
)

// PromSink records assignment events in Prometheus metrics.
type PromSink struct {
	events   *prometheus.CounterVec
	distance *prometheus.HistogramVec
}

// NewPromSink registers assignment metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_events_total",
		Help: "Total number of job assignment events",
	}, []string{"employee_id", "priority", "reassignment"})
	distance := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_distance_km",
		Help:    "Distance between technician and job at assignment time",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	}, []string{"priority"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(distance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			distance = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{events: events, distance: distance}, nil
}

// RecordAssignment increments the assignment counters.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.events.WithLabelValues(rec.EmployeeID, rec.Priority, strconv.FormatBool(rec.Reassignment)).Inc()
	if rec.DistanceKm > 0 {
		s.distance.WithLabelValues(rec.Priority).Observe(rec.DistanceKm)
	}
	return nil
}

// Close implements coremetrics.Sink.
func (s *PromSink) Close() {}
