package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/simulation"
)

// Simulator is the part of the simulation controller the HTTP layer uses.
type Simulator interface {
	Start(ctx context.Context, req simulation.StartRequest) (string, error)
	Preview(ctx context.Context, req simulation.StartRequest) (*simulation.Preview, error)
	Reset()
	Snapshot() models.Snapshot
	Locations() []geo.Location
}

// StartResponse acknowledges a started run.
type StartResponse struct {
	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
}

// SimulationHandler exposes the simulation over HTTP.
type SimulationHandler struct {
	sim Simulator
}

func NewSimulationHandler(sim Simulator) *SimulationHandler {
	return &SimulationHandler{sim: sim}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func decodeStartRequest(w http.ResponseWriter, r *http.Request) (simulation.StartRequest, bool) {
	var req simulation.StartRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return req, false
	}
	if req.Start == "" || req.Destination == "" {
		http.Error(w, "Start and destination are required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// Start begins a new run, replacing any active one.
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeStartRequest(w, r)
	if !ok {
		return
	}

	id, err := h.sim.Start(r.Context(), req)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("Failed to start simulation")
		http.Error(w, "Failed to start simulation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, StartResponse{RunID: id, Status: models.RunRouting})
}

// Preview returns a route and ETA without starting a run.
func (h *SimulationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, ok := decodeStartRequest(w, r)
	if !ok {
		return
	}

	preview, err := h.sim.Preview(r.Context(), req)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("Failed to preview route")
		http.Error(w, "Failed to preview route", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Reset cancels the active run.
func (h *SimulationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sim.Reset()
	writeJSON(w, http.StatusOK, h.sim.Snapshot())
}

// Get returns the current snapshot.
func (h *SimulationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.sim.Snapshot())
}

// GeoJSON returns the current snapshot as a feature collection.
func (h *SimulationHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fc := SnapshotFeatures(h.sim.Snapshot())
	data, err := fc.MarshalJSON()
	if err != nil {
		log.WithError(err).Error("Failed to encode geojson")
		http.Error(w, "Failed to encode geojson", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if _, err := w.Write(data); err != nil {
		log.WithError(err).Error("Failed to write geojson")
	}
}

// Locations lists the named places a run can start from or go to.
func (h *SimulationHandler) Locations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.sim.Locations())
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
