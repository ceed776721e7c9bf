package jobs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motofix/fieldops/core/dispatch"
	corejobs "github.com/motofix/fieldops/core/jobs"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/core/query"
	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/infra/logger"
	"github.com/motofix/fieldops/internal/eventbus"
)

func newTestMux(t *testing.T) (*http.ServeMux, *query.Facade) {
	t.Helper()
	hub := eventbus.NewHub()
	reg := corejobs.NewRegistry(hub, logger.NopLogger{})
	store := tracking.NewStore(reg, hub, logger.NopLogger{})
	eng, err := dispatch.NewEngine(reg, store, nil, nil, logger.NopLogger{})
	require.NoError(t, err)
	facade := query.New(reg, store, eng, hub, logger.NopLogger{})

	mux := http.NewServeMux()
	NewHandler(facade).Register(mux)
	return mux, facade
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListJobs(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/jobs", `{
		"customer_name":"Arun","bike_number":"TN-09-1234",
		"issue_description":"flat tyre","priority":"urgent",
		"location":{"lat":13.0827,"lng":80.2707,"address":"T. Nagar"}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, model.PriorityUrgent, created.Priority)

	rec = doJSON(t, mux, http.MethodGet, "/api/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestAssignAndStatusRoutes(t *testing.T) {
	mux, facade := newTestMux(t)
	job := facade.CreateJob(corejobs.CreateInput{CustomerName: "Arun"})

	rec := doJSON(t, mux, http.MethodPost, "/api/jobs/assign",
		`{"job_id":"`+job.ID+`","employee_id":"t1","employee_name":"Kumar"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/jobs/status",
		`{"job_id":"`+job.ID+`","status":"accepted","employee_id":"t1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/jobs/status",
		`{"job_id":"`+job.ID+`","status":"arrived","employee_id":"t1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "skipping en_route is rejected")

	rec = doJSON(t, mux, http.MethodGet, "/api/jobs/timeline?id="+job.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tl []model.TimelineEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tl))
	assert.Len(t, tl, 3)
}

func TestAssignUnknownJob(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodPost, "/api/jobs/assign",
		`{"job_id":"missing","employee_id":"t1","employee_name":"Kumar"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListFilters(t *testing.T) {
	mux, facade := newTestMux(t)
	j1 := facade.CreateJob(corejobs.CreateInput{CustomerName: "A"})
	j2 := facade.CreateJob(corejobs.CreateInput{CustomerName: "B"})
	require.True(t, facade.Assign(j1.ID, "t1", "Kumar"))
	require.True(t, facade.UpdateStatus(j2.ID, model.StatusCancelled, "", ""))

	rec := doJSON(t, mux, http.MethodGet, "/api/jobs?active=true", "")
	var active []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Len(t, active, 1)

	rec = doJSON(t, mux, http.MethodGet, "/api/jobs?employee_id=t1", "")
	var mine []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}

func TestNearestRoute(t *testing.T) {
	mux, facade := newTestMux(t)
	facade.UpdateLocation(tracking.Sample{EmployeeID: "t1", Lat: 13.0678, Lng: 80.2377})

	rec := doJSON(t, mux, http.MethodPost, "/api/jobs/nearest",
		`{"lat":13.0827,"lng":80.2707,"candidates":[{"id":"t1","name":"Kumar"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var match dispatch.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, "t1", match.Technician.ID)
	assert.InDelta(t, 3.9, match.DistanceKm, 1e-9)

	rec = doJSON(t, mux, http.MethodPost, "/api/jobs/nearest",
		`{"lat":13.0827,"lng":80.2707,"candidates":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodDelete, "/api/jobs", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
