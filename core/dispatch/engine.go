package dispatch

import (
	"fmt"
	"time"

	"github.com/motofix/fieldops/core/geo"
	"github.com/motofix/fieldops/core/jobs"
	"github.com/motofix/fieldops/core/logger"
	"github.com/motofix/fieldops/core/metrics"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/core/push"
)

// LocationLookup resolves the latest known location of a technician. The
// tracking store satisfies it.
type LocationLookup interface {
	Get(employeeID string) (model.TechnicianLocation, bool)
}

// Engine matches jobs to technicians by proximity and performs assignment.
type Engine struct {
	jobs      *jobs.Registry
	locations LocationLookup
	notifier  push.Notifier
	sink      metrics.Sink
	log       logger.Logger
}

// NewEngine creates an Engine. notifier and sink may be nil when no push
// channel or metrics backend is configured.
func NewEngine(reg *jobs.Registry, locations LocationLookup, notifier push.Notifier, sink metrics.Sink, log logger.Logger) (*Engine, error) {
	if reg == nil || locations == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewEngine")
	}
	if notifier == nil {
		notifier = push.NopNotifier{}
	}
	return &Engine{jobs: reg, locations: locations, notifier: notifier, sink: sink, log: log}, nil
}

// Assign binds the technician to the job, forcing the Assigned status even
// on reassignment, and pushes the dispatch notification. It reports false
// and mutates nothing when the job id is unknown or the job is terminal.
// Technician availability is not checked; callers filter candidates first.
func (e *Engine) Assign(jobID, employeeID, employeeName string) bool {
	job, ok := e.jobs.Get(jobID)
	if !ok {
		assignmentsTotal.WithLabelValues("unknown_job").Inc()
		e.log.Warnf("assign rejected: unknown job %s", jobID)
		return false
	}
	reassignment := job.AssignedTo != "" && job.AssignedTo != employeeID
	if !e.jobs.Assign(jobID, employeeID, employeeName) {
		assignmentsTotal.WithLabelValues("terminal_job").Inc()
		return false
	}
	assignmentsTotal.WithLabelValues("ok").Inc()

	n := push.Notification{
		Recipient: employeeID,
		Title:     "New job assigned",
		Body:      fmt.Sprintf("%s - %s, %s", job.BikeNumber, job.IssueDescription, job.Location.Address),
		JobID:     jobID,
		DeepLink:  "fieldops://jobs/" + jobID,
	}
	if err := e.notifier.Push(n); err != nil {
		pushFailure.Inc()
		e.log.Errorf("push notification for job %s: %v", jobID, err)
	} else {
		pushSuccess.Inc()
	}

	if e.sink != nil {
		rec := metrics.AssignmentRecord{
			JobID:        jobID,
			EmployeeID:   employeeID,
			Priority:     job.Priority.String(),
			Reassignment: reassignment,
			Time:         time.Now(),
		}
		if loc, ok := e.locations.Get(employeeID); ok {
			rec.DistanceKm = geo.RoundKm(geo.HaversineKm(job.Location.Lat, job.Location.Lng, loc.Lat, loc.Lng))
		}
		if err := e.sink.RecordAssignment(rec); err != nil {
			e.log.Errorf("metrics error: %v", err)
		}
	}
	return true
}

// Match is the outcome of a proximity search.
type Match struct {
	Technician model.Technician `json:"technician"`
	DistanceKm float64          `json:"distance_km"`
}

// FindNearestAvailable scans candidates in order and returns the Available
// technician closest to the customer, with the great-circle distance in
// kilometers rounded to one decimal. Ties keep the earlier candidate.
// Candidates without a known location or not Available are skipped; ok is
// false when nobody is eligible.
func (e *Engine) FindNearestAvailable(customerLat, customerLng float64, candidates []model.Technician) (Match, bool) {
	var best Match
	found := false
	for _, c := range candidates {
		loc, ok := e.locations.Get(c.ID)
		if !ok || loc.Status != model.TechAvailable {
			continue
		}
		d := geo.RoundKm(geo.HaversineKm(customerLat, customerLng, loc.Lat, loc.Lng))
		if !found || d < best.DistanceKm {
			best = Match{Technician: c, DistanceKm: d}
			found = true
		}
	}
	if found {
		nearestDistance.Observe(best.DistanceKm)
	}
	return best, found
}
