package tracking

import (
	"sort"
	"sync"
	"time"

	"github.com/motofix/fieldops/core/logger"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/internal/eventbus"
)

// JobLookup resolves job ids when deriving a technician's status. The job
// registry satisfies it.
type JobLookup interface {
	Get(id string) (model.Job, bool)
}

// Sample is one position reading pushed by a technician's client.
type Sample struct {
	EmployeeID   string
	EmployeeName string
	Lat          float64
	Lng          float64
	Accuracy     float64
	// CurrentJobID is the job the technician claims to be working; the
	// store verifies it against the job registry before deriving OnJob.
	CurrentJobID string
	Battery      *float64
	// At is the sample timestamp; zero means now.
	At time.Time
}

// Store owns the latest known position of every technician, one record per
// employee id, overwritten on each sample. Updates for the same technician
// serialize on the store lock; distinct technicians only contend on the map.
type Store struct {
	mu   sync.RWMutex
	data map[string]model.TechnicianLocation
	jobs JobLookup
	hub  *eventbus.Hub
	log  logger.Logger
}

// NewStore creates an empty Store deriving statuses through jobs.
func NewStore(jobs JobLookup, hub *eventbus.Hub, log logger.Logger) *Store {
	return &Store{data: map[string]model.TechnicianLocation{}, jobs: jobs, hub: hub, log: log}
}

// UpdateLocation overwrites the technician's record with the sample. The
// derived status is OnJob only when CurrentJobID references a job that
// exists and is not terminal; stale job references degrade to Available.
func (s *Store) UpdateLocation(smp Sample) {
	at := smp.At
	if at.IsZero() {
		at = time.Now()
	}
	status := model.TechAvailable
	if smp.CurrentJobID != "" {
		if job, ok := s.jobs.Get(smp.CurrentJobID); ok && job.Active() {
			status = model.TechOnJob
		}
	}
	loc := model.TechnicianLocation{
		EmployeeID:   smp.EmployeeID,
		EmployeeName: smp.EmployeeName,
		Status:       status,
		CurrentJobID: smp.CurrentJobID,
		Lat:          smp.Lat,
		Lng:          smp.Lng,
		Accuracy:     smp.Accuracy,
		LastUpdated:  at.UTC(),
		Battery:      smp.Battery,
	}
	s.mu.Lock()
	s.data[smp.EmployeeID] = loc
	s.mu.Unlock()

	s.log.Debugw("location updated", map[string]any{
		"employee_id": smp.EmployeeID,
		"status":      status.String(),
		"lat":         smp.Lat,
		"lng":         smp.Lng,
	})
	s.hub.Notify()
}

// Get returns the technician's latest location, if any sample has arrived.
func (s *Store) Get(employeeID string) (model.TechnicianLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.data[employeeID]
	return loc, ok
}

// All returns every known technician location sorted by employee id.
func (s *Store) All() []model.TechnicianLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.TechnicianLocation, 0, len(s.data))
	for _, loc := range s.data {
		res = append(res, loc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].EmployeeID < res[j].EmployeeID })
	return res
}
