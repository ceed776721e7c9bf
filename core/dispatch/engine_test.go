package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motofix/fieldops/core/jobs"
	coremetrics "github.com/motofix/fieldops/core/metrics"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/core/push"
	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/infra/logger"
	"github.com/motofix/fieldops/internal/eventbus"
)

type capturingNotifier struct {
	sent []push.Notification
	err  error
}

func (c *capturingNotifier) Push(n push.Notification) error {
	c.sent = append(c.sent, n)
	return c.err
}

type capturingSink struct {
	recs []coremetrics.AssignmentRecord
}

func (c *capturingSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	c.recs = append(c.recs, rec)
	return nil
}

func (c *capturingSink) Close() {}

func newTestEngine(t *testing.T) (*Engine, *jobs.Registry, *tracking.Store, *capturingNotifier, *capturingSink) {
	t.Helper()
	hub := eventbus.NewHub()
	reg := jobs.NewRegistry(hub, logger.NopLogger{})
	store := tracking.NewStore(reg, hub, logger.NopLogger{})
	notifier := &capturingNotifier{}
	sink := &capturingSink{}
	eng, err := NewEngine(reg, store, notifier, sink, logger.NopLogger{})
	require.NoError(t, err)
	return eng, reg, store, notifier, sink
}

func TestNewEngine_NilParams(t *testing.T) {
	_, err := NewEngine(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestAssign_UnknownJob(t *testing.T) {
	eng, _, _, notifier, _ := newTestEngine(t)
	assert.False(t, eng.Assign("missing", "t1", "Kumar"))
	assert.Empty(t, notifier.sent, "no push for failed assignment")
}

func TestAssign_NotifiesTechnician(t *testing.T) {
	eng, reg, store, notifier, sink := newTestEngine(t)
	job := reg.Create(jobs.CreateInput{
		BikeNumber:       "TN-09-1234",
		IssueDescription: "flat tyre",
		Priority:         model.PriorityUrgent,
		Location:         model.GeoPoint{Lat: 13.0827, Lng: 80.2707, Address: "T. Nagar"},
	})
	store.UpdateLocation(tracking.Sample{EmployeeID: "t1", Lat: 13.0678, Lng: 80.2377})

	require.True(t, eng.Assign(job.ID, "t1", "Kumar"))

	got, _ := reg.Get(job.ID)
	assert.Equal(t, model.StatusAssigned, got.Status)
	assert.Equal(t, "t1", got.AssignedTo)

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, "t1", n.Recipient)
	assert.Equal(t, "New job assigned", n.Title)
	assert.Equal(t, "TN-09-1234 - flat tyre, T. Nagar", n.Body)
	assert.Equal(t, job.ID, n.JobID)
	assert.Equal(t, "fieldops://jobs/"+job.ID, n.DeepLink)

	require.Len(t, sink.recs, 1)
	assert.Equal(t, "urgent", sink.recs[0].Priority)
	assert.InDelta(t, 3.9, sink.recs[0].DistanceKm, 1e-9)
}

func TestAssign_PushFailureIsIgnored(t *testing.T) {
	eng, reg, _, notifier, _ := newTestEngine(t)
	notifier.err = errors.New("broker down")
	job := reg.Create(jobs.CreateInput{CustomerName: "Arun"})

	assert.True(t, eng.Assign(job.ID, "t1", "Kumar"), "push failure must not fail the assignment")
	got, _ := reg.Get(job.ID)
	assert.Equal(t, "t1", got.AssignedTo)
}

func TestAssign_DoesNotCheckAvailability(t *testing.T) {
	eng, reg, store, _, _ := newTestEngine(t)
	busy := reg.Create(jobs.CreateInput{CustomerName: "A"})
	require.True(t, eng.Assign(busy.ID, "t1", "Kumar"))
	store.UpdateLocation(tracking.Sample{EmployeeID: "t1", CurrentJobID: busy.ID})

	// t1 is OnJob, yet direct assignment still goes through.
	other := reg.Create(jobs.CreateInput{CustomerName: "B"})
	assert.True(t, eng.Assign(other.ID, "t1", "Kumar"))
}

func TestFindNearestAvailable_Scenario(t *testing.T) {
	eng, reg, store, _, _ := newTestEngine(t)

	job := reg.Create(jobs.CreateInput{CustomerName: "A"})
	require.True(t, eng.Assign(job.ID, "t2", "Priya"))
	store.UpdateLocation(tracking.Sample{EmployeeID: "t1", EmployeeName: "Kumar", Lat: 13.0678, Lng: 80.2377})
	store.UpdateLocation(tracking.Sample{EmployeeID: "t2", EmployeeName: "Priya", Lat: 13.0820, Lng: 80.2700, CurrentJobID: job.ID})

	candidates := []model.Technician{{ID: "t1", Name: "Kumar"}, {ID: "t2", Name: "Priya"}}
	match, ok := eng.FindNearestAvailable(13.0827, 80.2707, candidates)
	require.True(t, ok)
	assert.Equal(t, "t1", match.Technician.ID, "the on-job technician must never win")
	assert.InDelta(t, 3.9, match.DistanceKm, 1e-9)
}

func TestFindNearestAvailable_PicksMinimum(t *testing.T) {
	eng, _, store, _, _ := newTestEngine(t)
	store.UpdateLocation(tracking.Sample{EmployeeID: "far", Lat: 13.2, Lng: 80.4})
	store.UpdateLocation(tracking.Sample{EmployeeID: "near", Lat: 13.083, Lng: 80.271})

	match, ok := eng.FindNearestAvailable(13.0827, 80.2707, []model.Technician{{ID: "far"}, {ID: "near"}})
	require.True(t, ok)
	assert.Equal(t, "near", match.Technician.ID)
}

func TestFindNearestAvailable_TieKeepsFirst(t *testing.T) {
	eng, _, store, _, _ := newTestEngine(t)
	// Same point, identical rounded distance.
	store.UpdateLocation(tracking.Sample{EmployeeID: "a", Lat: 13.0678, Lng: 80.2377})
	store.UpdateLocation(tracking.Sample{EmployeeID: "b", Lat: 13.0678, Lng: 80.2377})

	match, ok := eng.FindNearestAvailable(13.0827, 80.2707, []model.Technician{{ID: "b"}, {ID: "a"}})
	require.True(t, ok)
	assert.Equal(t, "b", match.Technician.ID, "ties resolve to candidate order")
}

func TestFindNearestAvailable_NoCandidates(t *testing.T) {
	eng, _, _, _, _ := newTestEngine(t)
	_, ok := eng.FindNearestAvailable(13.0827, 80.2707, nil)
	assert.False(t, ok)
}

func TestFindNearestAvailable_AllBusy(t *testing.T) {
	eng, reg, store, _, _ := newTestEngine(t)
	job := reg.Create(jobs.CreateInput{CustomerName: "A"})
	require.True(t, eng.Assign(job.ID, "t1", "Kumar"))
	store.UpdateLocation(tracking.Sample{EmployeeID: "t1", CurrentJobID: job.ID})

	_, ok := eng.FindNearestAvailable(13.0827, 80.2707, []model.Technician{{ID: "t1"}})
	assert.False(t, ok)
}

func TestFindNearestAvailable_SkipsUnknownLocations(t *testing.T) {
	eng, _, store, _, _ := newTestEngine(t)
	store.UpdateLocation(tracking.Sample{EmployeeID: "known", Lat: 13.0, Lng: 80.2})

	match, ok := eng.FindNearestAvailable(13.0827, 80.2707, []model.Technician{{ID: "ghost"}, {ID: "known"}})
	require.True(t, ok)
	assert.Equal(t, "known", match.Technician.ID)
}
