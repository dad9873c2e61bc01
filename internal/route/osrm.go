package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

// OSRMClient fetches routes from an OSRM HTTP server.
type OSRMClient struct {
	BaseURL string
	Client  *http.Client
}

// NewOSRMClient creates a client with a request timeout.
func NewOSRMClient(baseURL string, timeout time.Duration) *OSRMClient {
	return &OSRMClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type osrmManeuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier"`
	Exit     int    `json:"exit"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Name     string       `json:"name"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Steps []osrmStep `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route implements Provider.
func (c *OSRMClient) Route(ctx context.Context, req Request) (*Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeDriving
	}
	url := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson&steps=true",
		c.BaseURL, mode, req.Origin.Lng, req.Origin.Lat, req.Destination.Lng, req.Destination.Lat)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build osrm request: %w", err)
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read osrm response: %w", err)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode osrm response: %w", err)
	}
	if parsed.Code != "" && parsed.Code != "Ok" {
		return nil, fmt.Errorf("osrm %s: %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	r := parsed.Routes[0]
	pts := make([]geo.Point, 0, len(r.Geometry.Coordinates))
	for _, coord := range r.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}
		pts = append(pts, geo.Point{Lat: coord[1], Lng: coord[0]})
	}
	if len(pts) < 2 {
		return nil, ErrNoRoute
	}

	steps := []models.DirectionStep{}
	if len(r.Legs) > 0 {
		for _, s := range r.Legs[0].Steps {
			steps = append(steps, models.DirectionStep{
				Instruction:     instruction(s),
				DistanceText:    DistanceText(s.Distance),
				Maneuver:        maneuverName(s.Maneuver),
				DurationSeconds: s.Duration,
			})
		}
	}

	return &Result{
		Status:               StatusOK,
		Polyline:             pts,
		Steps:                steps,
		TotalDurationSeconds: r.Duration,
	}, nil
}

// DistanceText formats metres the way turn-by-turn lists show them.
func DistanceText(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func maneuverName(m osrmManeuver) string {
	name := m.Type
	if m.Modifier != "" {
		name += "-" + m.Modifier
	}
	return strings.ReplaceAll(name, " ", "-")
}

func onto(name string) string {
	if name == "" {
		return ""
	}
	return " onto " + name
}

func instruction(s osrmStep) string {
	m := s.Maneuver
	switch m.Type {
	case "depart":
		if s.Name != "" {
			return "Head out on " + s.Name
		}
		return "Head out"
	case "arrive":
		return "You have arrived at your destination"
	case "roundabout", "rotary":
		if m.Exit > 0 {
			return fmt.Sprintf("At the roundabout, take exit %d%s", m.Exit, onto(s.Name))
		}
		return "Enter the roundabout" + onto(s.Name)
	case "continue", "new name":
		return "Continue" + onto(s.Name)
	case "turn", "end of road", "fork", "merge", "on ramp", "off ramp":
		verb := map[string]string{
			"turn":        "Turn",
			"end of road": "At the end of the road, turn",
			"fork":        "Keep",
			"merge":       "Merge",
			"on ramp":     "Take the ramp",
			"off ramp":    "Take the exit",
		}[m.Type]
		if m.Modifier != "" {
			verb += " " + m.Modifier
		}
		return verb + onto(s.Name)
	default:
		if m.Modifier != "" {
			return "Go " + m.Modifier + onto(s.Name)
		}
		return "Continue" + onto(s.Name)
	}
}
