package model

import "time"

// TechStatus is the derived availability of a technician. It is computed
// from the technician's current job, never set directly.
type TechStatus int

const (
	TechAvailable TechStatus = iota
	TechOnJob
	// TechOffline is inferred externally from sample staleness; the core
	// never assigns it.
	TechOffline
)

func (s TechStatus) String() string {
	switch s {
	case TechAvailable:
		return "available"
	case TechOnJob:
		return "on_job"
	case TechOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TechStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Technician identifies a mobile technician from the master-data directory.
type Technician struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TechnicianLocation is the latest known position of a technician. One
// record per employee id, overwritten on each sample; no history is kept.
type TechnicianLocation struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Status       TechStatus `json:"status"`
	CurrentJobID string     `json:"current_job_id,omitempty"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Accuracy     float64    `json:"accuracy"`
	LastUpdated  time.Time  `json:"last_updated"`
	// Battery is the device battery percentage; nil when the client did not
	// report one.
	Battery *float64 `json:"battery,omitempty"`
}
