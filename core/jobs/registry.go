package jobs

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/motofix/fieldops/core/logger"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/internal/eventbus"
)

var (
	// ErrNotFound is returned when the job id is unknown to the registry.
	ErrNotFound = errors.New("jobs: job not found")
	// ErrInvalidTransition is returned when a status update violates the
	// lifecycle order.
	ErrInvalidTransition = errors.New("jobs: invalid status transition")
	// ErrUnauthorized is returned when a status update is attempted by a
	// technician other than the job's assignee.
	ErrUnauthorized = errors.New("jobs: technician not assigned to job")
)

// Registry owns the set of field-service jobs, their lifecycle transitions
// and the append-only per-job timeline. All methods are safe for concurrent
// use; notifications fire after the mutation commits.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]model.Job
	timelines map[string][]model.TimelineEntry
	hub       *eventbus.Hub
	log       logger.Logger
	now       func() time.Time
}

// NewRegistry creates an empty Registry publishing change notifications on hub.
func NewRegistry(hub *eventbus.Hub, log logger.Logger) *Registry {
	return &Registry{
		jobs:      map[string]model.Job{},
		timelines: map[string][]model.TimelineEntry{},
		hub:       hub,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the registry clock. Intended for tests.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// CreateInput carries the caller-supplied fields of a new job.
type CreateInput struct {
	CustomerID       string
	CustomerName     string
	CustomerPhone    string
	BikeNumber       string
	IssueDescription string
	Priority         model.Priority
	Location         model.GeoPoint
	Notes            string
}

// Create registers a new job in the Pending state and writes the first
// timeline entry. The job id is generated and immutable.
func (r *Registry) Create(in CreateInput) model.Job {
	now := r.now().UTC()
	job := model.Job{
		ID:               uuid.NewString(),
		CustomerID:       in.CustomerID,
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		BikeNumber:       in.BikeNumber,
		IssueDescription: in.IssueDescription,
		Priority:         in.Priority,
		Status:           model.StatusPending,
		Location:         in.Location,
		CreatedAt:        now,
		Notes:            in.Notes,
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.timelines[job.ID] = []model.TimelineEntry{{Status: model.StatusPending, Timestamp: now}}
	r.mu.Unlock()

	r.log.Infof("job %s created for %s (%s)", job.ID, job.CustomerName, job.Priority)
	r.hub.Notify()
	return job
}

// Update describes a partial mutation of a job. A nil Status leaves the
// lifecycle untouched; a nil Notes leaves the notes untouched.
type Update struct {
	Status *model.JobStatus
	// EmployeeID identifies the caller for the authorization check on
	// status changes of assigned jobs.
	EmployeeID string
	Notes      *string
	// Note is attached to the timeline entry written for a status change.
	Note string
}

// Apply mutates the job identified by id. Status changes are validated
// against the lifecycle order and, once the job has an assignee, against the
// caller's technician id; rejected updates leave the job and its timeline
// untouched. Notes are last-write-wins and remain writable on terminal jobs.
func (r *Registry) Apply(id string, up Update) error {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}

	changed := false
	if up.Status != nil && *up.Status != job.Status {
		if err := r.transitionLocked(&job, *up.Status, up.EmployeeID, up.Note); err != nil {
			r.mu.Unlock()
			return err
		}
		changed = true
	}
	if up.Notes != nil && *up.Notes != job.Notes {
		job.Notes = *up.Notes
		changed = true
	}
	if changed {
		r.jobs[id] = job
	}
	r.mu.Unlock()

	if changed {
		r.hub.Notify()
	}
	return nil
}

// transitionLocked validates and applies a status change. Caller holds the
// write lock.
func (r *Registry) transitionLocked(job *model.Job, next model.JobStatus, employeeID, note string) error {
	if job.AssignedTo != "" && employeeID != job.AssignedTo {
		r.log.Warnf("job %s: status change to %s rejected for technician %q", job.ID, next, employeeID)
		return ErrUnauthorized
	}
	if next == model.StatusAssigned || !job.Status.CanTransition(next) {
		r.log.Warnf("job %s: transition %s -> %s rejected", job.ID, job.Status, next)
		return ErrInvalidTransition
	}
	now := r.now().UTC()
	job.Status = next
	r.stamp(job, next, now)
	r.timelines[job.ID] = append(r.timelines[job.ID], model.TimelineEntry{
		Status:    next,
		Timestamp: now,
		Note:      note,
	})
	r.log.Infof("job %s moved to %s", job.ID, next)
	return nil
}

// stamp records the lifecycle timestamp for statuses that carry one. Each
// field is written exactly once, the first time its status is reached.
func (r *Registry) stamp(job *model.Job, st model.JobStatus, now time.Time) {
	switch st {
	case model.StatusAccepted:
		if job.AcceptedAt == nil {
			job.AcceptedAt = &now
		}
	case model.StatusEnRoute:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case model.StatusArrived:
		if job.ArrivedAt == nil {
			job.ArrivedAt = &now
		}
	case model.StatusCompleted:
		if job.CompletedAt == nil {
			job.CompletedAt = &now
		}
	}
}

// Assign binds a technician to the job and forces the Assigned status,
// re-entering it on reassignment. It reports false for unknown or terminal
// jobs and never checks technician availability; callers filter candidates.
func (r *Registry) Assign(id, employeeID, employeeName string) bool {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		r.mu.Unlock()
		return false
	}
	job.AssignedTo = employeeID
	job.AssignedToName = employeeName
	if job.Status != model.StatusAssigned {
		now := r.now().UTC()
		job.Status = model.StatusAssigned
		r.timelines[id] = append(r.timelines[id], model.TimelineEntry{
			Status:    model.StatusAssigned,
			Timestamp: now,
		})
	}
	r.jobs[id] = job
	r.mu.Unlock()

	r.log.Infof("job %s assigned to %s (%s)", id, employeeName, employeeID)
	r.hub.Notify()
	return true
}

// Get returns a copy of the job, if known.
func (r *Registry) Get(id string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// All returns every job ordered by creation time, newest first.
func (r *Registry) All() []model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(model.Job) bool { return true })
}

// Active returns jobs whose status is not terminal.
func (r *Registry) Active() []model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(model.Job.Active)
}

// ByEmployee returns jobs assigned to the given technician.
func (r *Registry) ByEmployee(employeeID string) []model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(j model.Job) bool { return j.AssignedTo == employeeID })
}

// collect filters jobs under the read lock held by the caller.
func (r *Registry) collect(keep func(model.Job) bool) []model.Job {
	res := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if keep(j) {
			res = append(res, j)
		}
	}
	sort.Slice(res, func(i, k int) bool {
		if res[i].CreatedAt.Equal(res[k].CreatedAt) {
			return res[i].ID < res[k].ID
		}
		return res[i].CreatedAt.After(res[k].CreatedAt)
	})
	return res
}

// Timeline returns a copy of the job's status history, oldest first. The
// result is empty for unknown jobs.
func (r *Registry) Timeline(id string) []model.TimelineEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.timelines[id]
	out := make([]model.TimelineEntry, len(entries))
	copy(out, entries)
	return out
}
