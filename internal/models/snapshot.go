package models

import (
	"time"

	"github.com/ukydev/emergency-priority/internal/geo"
)

// RunStatus is the lifecycle state of the active simulation run.
type RunStatus string

const (
	RunIdle    RunStatus = "idle"
	RunRouting RunStatus = "routing" // waiting for the route provider
	RunActive  RunStatus = "running"
	RunArrived RunStatus = "arrived"
)

// LightAction is the display label for a light's relation to the vehicle.
type LightAction string

const (
	ActionPriority  LightAction = "priority"
	ActionPreparing LightAction = "preparing"
	ActionNormal    LightAction = "normal"
)

// ETA compares the provider's travel time with the priority-corridor figure.
type ETA struct {
	NormalSeconds    int `json:"normal_seconds"`
	OptimizedSeconds int `json:"optimized_seconds"`
}

// LightView is a traffic light as seen from the vehicle.
type LightView struct {
	TrafficLight
	DistanceMeters float64     `json:"distance_m"`
	Action         LightAction `json:"action"`
}

// VehicleInfo describes the run's overall pace.
type VehicleInfo struct {
	DistanceKm float64       `json:"distance_km"`
	SpeedKmh   float64       `json:"speed_kmh"`
	Duration   time.Duration `json:"duration"`
	Elapsed    time.Duration `json:"elapsed"`
	Remaining  time.Duration `json:"remaining"`
}

// Snapshot is a read-only copy of the simulation state handed to the presentation layer.
type Snapshot struct {
	RunID                 string          `json:"run_id,omitempty"`
	Status                RunStatus       `json:"status"`
	VehicleType           VehicleType     `json:"vehicle_type,omitempty"`
	Origin                geo.Point       `json:"origin"`
	Destination           geo.Point       `json:"destination"`
	Polyline              []geo.Point     `json:"polyline,omitempty"`
	Position              geo.Point       `json:"position"`
	Progress              float64         `json:"progress"`
	ProgressPercent       float64         `json:"progress_percent"`
	Lights                []LightView     `json:"traffic_lights"`
	Steps                 []DirectionStep `json:"steps"`
	CurrentStepIndex      int             `json:"current_step_index"`
	StepsRevision         int             `json:"steps_revision"`
	HasReachedDestination bool            `json:"has_reached_destination"`
	Degraded              bool            `json:"degraded"` // straight-line fallback route
	ETA                   *ETA            `json:"eta,omitempty"`
	Vehicle               VehicleInfo     `json:"vehicle"`
	StartedAt             *time.Time      `json:"started_at,omitempty"`
}
