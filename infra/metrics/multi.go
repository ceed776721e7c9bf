package metrics

import coremetrics "github.com/motofix/fieldops/core/metrics"

// MultiSink fans out assignment records to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		s.Close()
	}
}
