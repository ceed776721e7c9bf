package metrics

import "time"

// AssignmentRecord captures one dispatch decision for metrics sinks.
type AssignmentRecord struct {
	JobID        string
	EmployeeID   string
	Priority     string
	DistanceKm   float64
	Reassignment bool
	Time         time.Time
}

// Sink receives dispatch records. Implementations live in infra/metrics.
type Sink interface {
	RecordAssignment(rec AssignmentRecord) error
	Close()
}

// NopSink discards all records. Used when no metrics backend is reachable.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
func (NopSink) Close()                                  {}

// Config selects and parameterizes the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}
