package technicians

import (
	"encoding/json"
	"net/http"

	"github.com/motofix/fieldops/core/query"
	"github.com/motofix/fieldops/core/tracking"
)

// Handler exposes technician location data over HTTP.
type Handler struct {
	facade *query.Facade
}

// NewHandler creates a Handler backed by f.
func NewHandler(f *query.Facade) *Handler { return &Handler{facade: f} }

// Register wires the technician routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/technicians/locations", h.locations)
}

// locations serves GET /api/technicians/locations (?employee_id= for one
// record) and POST for clients pushing samples over HTTP instead of MQTT.
func (h *Handler) locations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("employee_id"); id != "" {
			loc, ok := h.facade.GetLocation(id)
			if !ok {
				http.Error(w, "no location for technician", http.StatusNotFound)
				return
			}
			writeJSON(w, loc)
			return
		}
		writeJSON(w, h.facade.GetAllLocations())
	case http.MethodPost:
		var req struct {
			EmployeeID   string   `json:"employee_id"`
			EmployeeName string   `json:"employee_name"`
			Lat          float64  `json:"lat"`
			Lng          float64  `json:"lng"`
			Accuracy     float64  `json:"accuracy"`
			CurrentJobID string   `json:"current_job_id"`
			Battery      *float64 `json:"battery"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.EmployeeID == "" {
			http.Error(w, "employee_id is required", http.StatusBadRequest)
			return
		}
		h.facade.UpdateLocation(tracking.Sample{
			EmployeeID:   req.EmployeeID,
			EmployeeName: req.EmployeeName,
			Lat:          req.Lat,
			Lng:          req.Lng,
			Accuracy:     req.Accuracy,
			CurrentJobID: req.CurrentJobID,
			Battery:      req.Battery,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
