package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/emergency-priority/internal/config"
	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/simulation"
)

const osrmBody = `{
  "code": "Ok",
  "routes": [{
    "duration": 400,
    "geometry": {"coordinates": [[76.7839,30.7433],[76.7820,30.7470],[76.7801,30.7510],[76.7790,30.7560],[76.7775,30.7610],[76.7764,30.7649]]},
    "legs": [{"steps": [
      {"distance": 850, "duration": 120, "name": "Jan Marg", "maneuver": {"type": "depart"}},
      {"distance": 1530, "duration": 280, "name": "Madhya Marg", "maneuver": {"type": "turn", "modifier": "left"}},
      {"distance": 0, "duration": 0, "name": "", "maneuver": {"type": "arrive"}}
    ]}]
  }]
}`

func fastConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	base := []string{"-tick-interval", "1ms", "-min-duration", "20ms", "-max-duration", "40ms", "-seed", "11"}
	cfg, err := config.Load("simulator-test", append(base, args...))
	require.NoError(t, err)
	return cfg
}

func TestRun_StraightLine(t *testing.T) {
	cfg := fastConfig(t, "-osrm-url", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := run(ctx, cfg, simulation.StartRequest{Start: "Sector 17", Destination: "PGI Hospital"})
	require.NoError(t, err)
	assert.True(t, snap.HasReachedDestination)
	assert.Equal(t, models.RunArrived, snap.Status)
	assert.Equal(t, geo.Point{Lat: 30.7649, Lng: 76.7764}, snap.Position)
	assert.True(t, snap.Degraded)
	assert.Len(t, snap.Polyline, 50)
	assert.Nil(t, snap.ETA)
}

func TestRun_OSRMRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(osrmBody))
	}))
	defer server.Close()

	cfg := fastConfig(t, "-osrm-url", server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := run(ctx, cfg, simulation.StartRequest{Start: "30.7433,76.7839", Destination: "30.7649,76.7764", VehicleType: "fire"})
	require.NoError(t, err)
	assert.False(t, snap.Degraded)
	assert.Equal(t, models.VehicleFire, snap.VehicleType)
	require.Len(t, snap.Steps, 3)
	for _, s := range snap.Steps {
		assert.True(t, s.Completed)
	}
	require.NotNil(t, snap.ETA)
	assert.Equal(t, 300, snap.ETA.OptimizedSeconds)
	// six points at one light per point, endpoints excluded
	assert.Len(t, snap.Lights, 4)
}

func TestRun_InvalidInput(t *testing.T) {
	cfg := fastConfig(t, "-osrm-url", "")
	_, err := run(context.Background(), cfg, simulation.StartRequest{Start: "Atlantis", Destination: "PGI Hospital"})
	assert.ErrorIs(t, err, simulation.ErrInvalidInput)
}

func TestRun_Cancelled(t *testing.T) {
	cfg, err := config.Load("simulator-test", []string{"-osrm-url", "", "-tick-interval", "1h"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	snap, err := run(ctx, cfg, simulation.StartRequest{Start: "Sector 17", Destination: "PGI Hospital"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, snap.HasReachedDestination)
}
