package query

import (
	"errors"

	"github.com/motofix/fieldops/core/dispatch"
	"github.com/motofix/fieldops/core/jobs"
	"github.com/motofix/fieldops/core/logger"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/internal/eventbus"
)

// Facade is the in-process boundary exposed to external collaborators:
// billing, inventory, dashboards and the technician mobile clients. It
// composes the registries and the dispatch engine; business-rule failures
// surface as booleans per the mutation API contract, never as panics.
type Facade struct {
	jobs   *jobs.Registry
	track  *tracking.Store
	engine *dispatch.Engine
	hub    *eventbus.Hub
	log    logger.Logger
}

// New creates a Facade over the given components.
func New(reg *jobs.Registry, track *tracking.Store, engine *dispatch.Engine, hub *eventbus.Hub, log logger.Logger) *Facade {
	return &Facade{jobs: reg, track: track, engine: engine, hub: hub, log: log}
}

// CreateJob registers a new job in the Pending state.
func (f *Facade) CreateJob(in jobs.CreateInput) model.Job {
	return f.jobs.Create(in)
}

// Assign dispatches the job to the technician. False means the job is
// unknown or terminal.
func (f *Facade) Assign(jobID, employeeID, employeeName string) bool {
	return f.engine.Assign(jobID, employeeID, employeeName)
}

// UpdateStatus moves the job to the given status on behalf of employeeID.
// It reports false, with nothing mutated, when the job is unknown, the
// transition is illegal, or the caller is not the assignee. A non-empty
// notes value also overwrites the job notes.
func (f *Facade) UpdateStatus(jobID string, status model.JobStatus, employeeID, notes string) bool {
	up := jobs.Update{Status: &status, EmployeeID: employeeID, Note: notes}
	if notes != "" {
		up.Notes = &notes
	}
	if err := f.jobs.Apply(jobID, up); err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			f.log.Warnf("status update for unknown job %s", jobID)
		case errors.Is(err, jobs.ErrUnauthorized), errors.Is(err, jobs.ErrInvalidTransition):
			f.log.Debugf("status update rejected for job %s: %v", jobID, err)
		}
		return false
	}
	return true
}

// UpdateNotes overwrites the job notes, last-write-wins. Notes remain
// writable after the job reaches a terminal state.
func (f *Facade) UpdateNotes(jobID, notes string) bool {
	return f.jobs.Apply(jobID, jobs.Update{Notes: &notes}) == nil
}

// UpdateLocation feeds a position sample into the location registry.
func (f *Facade) UpdateLocation(smp tracking.Sample) {
	f.track.UpdateLocation(smp)
}

// GetJob returns the job, if known.
func (f *Facade) GetJob(id string) (model.Job, bool) { return f.jobs.Get(id) }

// GetAllJobs returns every job, newest first.
func (f *Facade) GetAllJobs() []model.Job { return f.jobs.All() }

// GetActiveJobs returns jobs not yet completed or cancelled.
func (f *Facade) GetActiveJobs() []model.Job { return f.jobs.Active() }

// GetJobsByEmployee returns jobs assigned to the technician.
func (f *Facade) GetJobsByEmployee(employeeID string) []model.Job {
	return f.jobs.ByEmployee(employeeID)
}

// GetTimeline returns the job's status history; empty for unknown ids.
func (f *Facade) GetTimeline(jobID string) []model.TimelineEntry {
	return f.jobs.Timeline(jobID)
}

// GetLocation returns the technician's latest known position.
func (f *Facade) GetLocation(employeeID string) (model.TechnicianLocation, bool) {
	return f.track.Get(employeeID)
}

// GetAllLocations returns every known technician location.
func (f *Facade) GetAllLocations() []model.TechnicianLocation { return f.track.All() }

// FindNearestAvailable returns the closest Available candidate to the
// customer coordinates.
func (f *Facade) FindNearestAvailable(lat, lng float64, candidates []model.Technician) (dispatch.Match, bool) {
	return f.engine.FindNearestAvailable(lat, lng, candidates)
}

// Subscribe registers a listener invoked after every registry mutation and
// returns its unsubscribe function.
func (f *Facade) Subscribe(fn func()) (unsubscribe func()) {
	return f.hub.Subscribe(fn)
}
