package model

import (
	"fmt"
	"time"
)

// JobStatus represents the lifecycle state of a field-service job.
type JobStatus int

const (
	// StatusPending is the initial state of a freshly created job before any
	// technician has been assigned to it.
	StatusPending JobStatus = iota
	StatusAssigned
	StatusAccepted
	StatusEnRoute
	StatusArrived
	StatusInProgress
	StatusReturning
	StatusCompleted
	StatusCancelled
)

// String returns the canonical name of the status.
func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAssigned:
		return "assigned"
	case StatusAccepted:
		return "accepted"
	case StatusEnRoute:
		return "en_route"
	case StatusArrived:
		return "arrived"
	case StatusInProgress:
		return "in_progress"
	case StatusReturning:
		return "returning"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so statuses serialize as
// their names in JSON payloads.
func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *JobStatus) UnmarshalText(b []byte) error {
	st, err := ParseJobStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseJobStatus converts a status name to its JobStatus value.
func ParseJobStatus(v string) (JobStatus, error) {
	for st := StatusPending; st <= StatusCancelled; st++ {
		if st.String() == v {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown job status %q", v)
}

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. The forward order is Pending, Assigned, Accepted, EnRoute, Arrived,
// InProgress, Returning, Completed. Cancelled is reachable from any
// non-terminal state. Skipping forward or moving backward is rejected;
// reassignment re-enters Assigned through the dispatch engine, not here.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next == s+1 && next <= StatusCompleted
}

// Priority classifies how urgently a job needs a technician on site.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	pr, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = pr
	return nil
}

// ParsePriority converts a priority name to its Priority value.
func ParsePriority(v string) (Priority, error) {
	for p := PriorityLow; p <= PriorityUrgent; p++ {
		if p.String() == v {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", v)
}

// GeoPoint is a WGS84 coordinate with a free-form street address.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Job is a unit of field-service work tied to one customer, bike and
// location. Jobs are owned by the job registry; callers receive copies.
type Job struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	BikeNumber       string    `json:"bike_number"`
	IssueDescription string    `json:"issue_description"`
	Priority         Priority  `json:"priority"`
	Status           JobStatus `json:"status"`
	Location         GeoPoint  `json:"location"`

	AssignedTo     string `json:"assigned_to,omitempty"`
	AssignedToName string `json:"assigned_to_name,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	ArrivedAt   *time.Time `json:"arrived_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Active reports whether the job still needs work.
func (j Job) Active() bool { return !j.Status.Terminal() }

// TimelineEntry is one record of a job's append-only status audit trail.
type TimelineEntry struct {
	Status    JobStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}
