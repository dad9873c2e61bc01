// Package trafficlight places simulated lights along a route and decides their
// colour each tick, giving way to an approaching emergency vehicle.
package trafficlight

import (
	"fmt"
	"time"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

const (
	// DefaultCount is the number of lights aimed for along a route.
	DefaultCount = 5
	// MinRoutePoints is the shortest polyline that receives lights.
	MinRoutePoints = 4

	// JitterDeg offsets a light from the route line so it stays visible on the map.
	JitterDeg = 0.0005

	MinCycleTime = 5 * time.Second
	MaxCycleTime = 10 * time.Second

	// PriorityRadiusKm forces green, PrepareRadiusKm forces yellow.
	PriorityRadiusKm = 0.5
	PrepareRadiusKm  = 1.0

	// display-only thresholds
	priorityLabelKm  = 0.2
	preparingLabelKm = 0.5
)

// Rand is the randomness a generator needs.
type Rand interface {
	Intn(n int) int
	Sign() float64
	DurationBetween(min, max time.Duration) time.Duration
}

// Generate places lights every max(1, N/count) points, never on the endpoints.
func Generate(points []geo.Point, count int, rng Rand, now time.Time) []models.TrafficLight {
	n := len(points)
	if n < MinRoutePoints {
		return nil
	}
	if count < 1 {
		count = DefaultCount
	}

	interval := n / count
	if interval < 1 {
		interval = 1
	}

	lights := make([]models.TrafficLight, 0, count)
	for i := interval; i < n-interval; i += interval {
		anchor := points[i]
		lights = append(lights, models.TrafficLight{
			ID: fmt.Sprintf("light-%d", i),
			Position: geo.Point{
				Lat: anchor.Lat + rng.Sign()*JitterDeg,
				Lng: anchor.Lng + rng.Sign()*JitterDeg,
			},
			Anchor:      anchor,
			RouteIndex:  i,
			Status:      models.LightStatuses[rng.Intn(len(models.LightStatuses))],
			LastChanged: now,
			CycleTime:   rng.DurationBetween(MinCycleTime, MaxCycleTime),
		})
	}
	return lights
}

// Next advances the autonomous ring red -> green -> yellow -> red.
func Next(s models.LightStatus) models.LightStatus {
	switch s {
	case models.LightRed:
		return models.LightGreen
	case models.LightGreen:
		return models.LightYellow
	default:
		return models.LightRed
	}
}

// Decide returns the status a light should show given the vehicle distance.
func Decide(light models.TrafficLight, distanceKm float64, now time.Time) models.LightStatus {
	switch {
	case distanceKm < PriorityRadiusKm:
		return models.LightGreen
	case distanceKm < PrepareRadiusKm:
		return models.LightYellow
	case now.Sub(light.LastChanged) > light.CycleTime:
		return Next(light.Status)
	default:
		return light.Status
	}
}

// Update applies one tick to a light. LastChanged only moves on a real change.
func Update(light *models.TrafficLight, vehicle geo.Point, now time.Time) bool {
	next := Decide(*light, geo.DistanceKm(vehicle, light.Anchor), now)
	if next == light.Status {
		return false
	}
	light.Status = next
	light.LastChanged = now
	return true
}

// UpdateAll ticks every light and returns how many changed.
func UpdateAll(lights []models.TrafficLight, vehicle geo.Point, now time.Time) int {
	changed := 0
	for i := range lights {
		if Update(&lights[i], vehicle, now) {
			changed++
		}
	}
	return changed
}

// View annotates a light with its distance to the vehicle.
func View(light models.TrafficLight, vehicle geo.Point) models.LightView {
	d := geo.DistanceKm(vehicle, light.Anchor)
	action := models.ActionNormal
	switch {
	case d < priorityLabelKm:
		action = models.ActionPriority
	case d < preparingLabelKm:
		action = models.ActionPreparing
	}
	return models.LightView{TrafficLight: light, DistanceMeters: d * 1000, Action: action}
}
