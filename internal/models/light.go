package models

import (
	"time"

	"github.com/ukydev/emergency-priority/internal/geo"
)

// LightStatus is the colour a traffic light is showing.
type LightStatus string

const (
	LightRed    LightStatus = "red"
	LightYellow LightStatus = "yellow"
	LightGreen  LightStatus = "green"
)

// LightStatuses lists every status in ring order.
var LightStatuses = []LightStatus{LightRed, LightGreen, LightYellow}

// TrafficLight is a simulated light placed along the route.
type TrafficLight struct {
	ID          string        `json:"id"`
	Position    geo.Point     `json:"position"` // display position, offset from the route line
	Anchor      geo.Point     `json:"anchor"`   // polyline point the light belongs to
	RouteIndex  int           `json:"route_index"`
	Status      LightStatus   `json:"status"`
	LastChanged time.Time     `json:"last_changed"`
	CycleTime   time.Duration `json:"cycle_time"`
}
