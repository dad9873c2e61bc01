package route

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/emergency-priority/internal/geo"
)

var testReq = Request{
	Origin:      geo.Point{Lat: 30.7433, Lng: 76.7839},
	Destination: geo.Point{Lat: 30.7649, Lng: 76.7764},
	Mode:        ModeDriving,
}

const osrmBody = `{
  "code": "Ok",
  "routes": [{
    "duration": 412.5,
    "geometry": {"coordinates": [[76.7839,30.7433],[76.7801,30.7510],[76.7764,30.7649]]},
    "legs": [{
      "steps": [
        {"distance": 850, "duration": 120, "name": "Jan Marg", "maneuver": {"type": "depart"}},
        {"distance": 1530, "duration": 250, "name": "Madhya Marg", "maneuver": {"type": "turn", "modifier": "left"}},
        {"distance": 0, "duration": 0, "name": "", "maneuver": {"type": "arrive"}}
      ]
    }]
  }]
}`

func TestOSRMClient_Route(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/76.783900,30.743300;76.776400,30.764900", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("steps"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(osrmBody))
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL+"/", time.Second)
	res, err := client.Route(context.Background(), testReq)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	require.Len(t, res.Polyline, 3)
	assert.Equal(t, testReq.Origin, res.Polyline[0])
	assert.Equal(t, testReq.Destination, res.Polyline[2])
	assert.Equal(t, 412.5, res.TotalDurationSeconds)

	require.Len(t, res.Steps, 3)
	assert.Equal(t, "Head out on Jan Marg", res.Steps[0].Instruction)
	assert.Equal(t, "850 m", res.Steps[0].DistanceText)
	assert.Equal(t, "depart", res.Steps[0].Maneuver)
	assert.Equal(t, "Turn left onto Madhya Marg", res.Steps[1].Instruction)
	assert.Equal(t, "1.5 km", res.Steps[1].DistanceText)
	assert.Equal(t, "turn-left", res.Steps[1].Maneuver)
	assert.Equal(t, "You have arrived at your destination", res.Steps[2].Instruction)
	for _, s := range res.Steps {
		assert.False(t, s.Completed)
	}
}

func TestOSRMClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewOSRMClient(server.URL, time.Second).Route(context.Background(), testReq)
	assert.Error(t, err)
}

func TestOSRMClient_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[]}`))
	}))
	defer server.Close()

	_, err := NewOSRMClient(server.URL, time.Second).Route(context.Background(), testReq)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestOSRMClient_ErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoSegment","message":"Could not find a matching segment"}`))
	}))
	defer server.Close()

	_, err := NewOSRMClient(server.URL, time.Second).Route(context.Background(), testReq)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "NoSegment"))
}

func TestOSRMClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{bad json"))
	}))
	defer server.Close()

	_, err := NewOSRMClient(server.URL, time.Second).Route(context.Background(), testReq)
	assert.Error(t, err)
}

func TestOSRMClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(osrmBody))
	}))
	defer server.Close()

	_, err := NewOSRMClient(server.URL, 10*time.Millisecond).Route(context.Background(), testReq)
	assert.Error(t, err)
}

func TestDistanceText(t *testing.T) {
	assert.Equal(t, "0 m", DistanceText(0))
	assert.Equal(t, "350 m", DistanceText(350.2))
	assert.Equal(t, "1.0 km", DistanceText(1000))
	assert.Equal(t, "12.3 km", DistanceText(12345))
}

func TestInstruction(t *testing.T) {
	tests := []struct {
		step osrmStep
		want string
	}{
		{osrmStep{Maneuver: osrmManeuver{Type: "depart"}}, "Head out"},
		{osrmStep{Name: "Sector Road", Maneuver: osrmManeuver{Type: "continue"}}, "Continue onto Sector Road"},
		{osrmStep{Name: "Dakshin Marg", Maneuver: osrmManeuver{Type: "roundabout", Exit: 2}}, "At the roundabout, take exit 2 onto Dakshin Marg"},
		{osrmStep{Maneuver: osrmManeuver{Type: "end of road", Modifier: "right"}}, "At the end of the road, turn right"},
		{osrmStep{Name: "NH 5", Maneuver: osrmManeuver{Type: "fork", Modifier: "slight left"}}, "Keep slight left onto NH 5"},
		{osrmStep{Maneuver: osrmManeuver{Type: "notification", Modifier: "straight"}}, "Go straight"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, instruction(tc.step))
	}
	assert.Equal(t, "end-of-road-slight-right", maneuverName(osrmManeuver{Type: "end of road", Modifier: "slight right"}))
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Route(ctx context.Context, req Request) (*Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

func TestAcquire_Success(t *testing.T) {
	p := new(mockProvider)
	want := &Result{Status: StatusOK, Polyline: []geo.Point{testReq.Origin, testReq.Destination}, TotalDurationSeconds: 300}
	p.On("Route", mock.Anything, testReq).Return(want, nil)

	res, degraded := Acquire(context.Background(), p, testReq, 50)
	assert.False(t, degraded)
	assert.Equal(t, want.Polyline, res.Polyline)
	assert.NotNil(t, res.Steps)
	p.AssertExpectations(t)
}

func TestAcquire_FallbackOnError(t *testing.T) {
	p := new(mockProvider)
	p.On("Route", mock.Anything, testReq).Return(nil, errors.New("unavailable"))

	res, degraded := Acquire(context.Background(), p, testReq, 50)
	assert.True(t, degraded)
	assert.Equal(t, StatusFallback, res.Status)
	require.Len(t, res.Polyline, 50)
	assert.Equal(t, testReq.Origin, res.Polyline[0])
	assert.Equal(t, testReq.Destination, res.Polyline[49])
	assert.Empty(t, res.Steps)
	assert.Zero(t, res.TotalDurationSeconds)
}

func TestAcquire_FallbackOnShortPolyline(t *testing.T) {
	p := new(mockProvider)
	p.On("Route", mock.Anything, testReq).Return(&Result{Status: StatusOK, Polyline: []geo.Point{testReq.Origin}}, nil)

	res, degraded := Acquire(context.Background(), p, testReq, 10)
	assert.True(t, degraded)
	assert.Len(t, res.Polyline, 10)
}

func TestAcquire_NilProvider(t *testing.T) {
	res, degraded := Acquire(context.Background(), nil, Request{Origin: testReq.Origin, Destination: testReq.Destination}, 0)
	assert.True(t, degraded)
	assert.Len(t, res.Polyline, DefaultFallbackPoints)
}
