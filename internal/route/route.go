package route

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

const (
	ModeDriving = "driving"

	StatusOK       = "OK"
	StatusFallback = "FALLBACK"

	// DefaultFallbackPoints is the sample count of a synthetic straight-line route.
	DefaultFallbackPoints = 50
)

var ErrNoRoute = errors.New("no route")

// Request asks a provider for a route between two points.
type Request struct {
	Origin      geo.Point `json:"origin"`
	Destination geo.Point `json:"destination"`
	Mode        string    `json:"mode"`
}

// Result is an acquired route.
type Result struct {
	Status               string                 `json:"status"`
	Polyline             []geo.Point            `json:"polyline"`
	Steps                []models.DirectionStep `json:"steps"`
	TotalDurationSeconds float64                `json:"total_duration_seconds"`
}

// Provider is an external directions service.
type Provider interface {
	Route(ctx context.Context, req Request) (*Result, error)
}

// StraightLine builds a synthetic route with no steps and no duration.
func StraightLine(req Request, points int) *Result {
	if points < 2 {
		points = DefaultFallbackPoints
	}
	return &Result{
		Status:   StatusFallback,
		Polyline: geo.StraightLine(req.Origin, req.Destination, points),
		Steps:    []models.DirectionStep{},
	}
}

// Acquire asks the provider for a route and falls back to a straight line
// when the provider is missing, fails, or returns fewer than two points.
func Acquire(ctx context.Context, p Provider, req Request, fallbackPoints int) (*Result, bool) {
	if req.Mode == "" {
		req.Mode = ModeDriving
	}
	fields := log.Fields{"origin": req.Origin.String(), "destination": req.Destination.String()}

	if p == nil {
		log.WithFields(fields).Info("No route provider configured, using straight-line route")
		return StraightLine(req, fallbackPoints), true
	}

	res, err := p.Route(ctx, req)
	if err == nil && (res == nil || len(res.Polyline) < 2) {
		err = ErrNoRoute
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Could not get directions, using straight-line route")
		return StraightLine(req, fallbackPoints), true
	}

	if res.Steps == nil {
		res.Steps = []models.DirectionStep{}
	}
	log.WithFields(fields).WithFields(log.Fields{
		"points": len(res.Polyline),
		"steps":  len(res.Steps),
	}).Info("Got route")
	return res, false
}
