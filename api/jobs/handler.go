package jobs

import (
	"encoding/json"
	"net/http"

	corejobs "github.com/motofix/fieldops/core/jobs"
	"github.com/motofix/fieldops/core/model"
	"github.com/motofix/fieldops/core/query"
)

// Handler exposes the job surface of the query façade over HTTP.
type Handler struct {
	facade *query.Facade
}

// NewHandler creates a Handler backed by f.
func NewHandler(f *query.Facade) *Handler { return &Handler{facade: f} }

// Register wires the job routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", h.jobs)
	mux.HandleFunc("/api/jobs/timeline", h.timeline)
	mux.HandleFunc("/api/jobs/assign", h.assign)
	mux.HandleFunc("/api/jobs/status", h.status)
	mux.HandleFunc("/api/jobs/nearest", h.nearest)
}

// jobs serves GET /api/jobs (list, ?active=true, ?employee_id=) and
// POST /api/jobs (create).
func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		var out []model.Job
		switch {
		case q.Get("employee_id") != "":
			out = h.facade.GetJobsByEmployee(q.Get("employee_id"))
		case q.Get("active") == "true":
			out = h.facade.GetActiveJobs()
		default:
			out = h.facade.GetAllJobs()
		}
		writeJSON(w, out)
	case http.MethodPost:
		var req struct {
			CustomerID       string         `json:"customer_id"`
			CustomerName     string         `json:"customer_name"`
			CustomerPhone    string         `json:"customer_phone"`
			BikeNumber       string         `json:"bike_number"`
			IssueDescription string         `json:"issue_description"`
			Priority         model.Priority `json:"priority"`
			Location         model.GeoPoint `json:"location"`
			Notes            string         `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		job := h.facade.CreateJob(corejobs.CreateInput{
			CustomerID:       req.CustomerID,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			BikeNumber:       req.BikeNumber,
			IssueDescription: req.IssueDescription,
			Priority:         req.Priority,
			Location:         req.Location,
			Notes:            req.Notes,
		})
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, job)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// timeline serves GET /api/jobs/timeline?id=<jobID>.
func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.facade.GetTimeline(id))
}

// assign serves POST /api/jobs/assign.
func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		JobID        string `json:"job_id"`
		EmployeeID   string `json:"employee_id"`
		EmployeeName string `json:"employee_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.facade.Assign(req.JobID, req.EmployeeID, req.EmployeeName) {
		http.Error(w, "job not found or no longer assignable", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"assigned": true})
}

// status serves POST /api/jobs/status.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		JobID      string          `json:"job_id"`
		Status     model.JobStatus `json:"status"`
		EmployeeID string          `json:"employee_id"`
		Notes      string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.facade.UpdateStatus(req.JobID, req.Status, req.EmployeeID, req.Notes) {
		http.Error(w, "status update rejected", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"updated": true})
}

// nearest serves POST /api/jobs/nearest: proximity search over the supplied
// candidate list.
func (h *Handler) nearest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Lat        float64            `json:"lat"`
		Lng        float64            `json:"lng"`
		Candidates []model.Technician `json:"candidates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	match, ok := h.facade.FindNearestAvailable(req.Lat, req.Lng, req.Candidates)
	if !ok {
		http.Error(w, "no available technician", http.StatusNotFound)
		return
	}
	writeJSON(w, match)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
