package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a geographical location with latitude and longitude coordinates.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the point the same way ParseCoord accepts it.
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push s past 1 for antipodal points
	s = math.Min(1, math.Max(0, s))
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return EarthRadiusKm * c
}

// TotalRouteDistanceKm sums the segment distances of a polyline.
func TotalRouteDistanceKm(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += DistanceKm(points[i], points[i+1])
	}
	return total
}

// Lerp interpolates lat and lng independently. It is not a great-circle interpolation.
func Lerp(a, b Point, t float64) Point {
	return Point{Lat: a.Lat + (b.Lat-a.Lat)*t, Lng: a.Lng + (b.Lng-a.Lng)*t}
}

// StraightLine samples n evenly spaced points from start to end, both included.
func StraightLine(start, end Point, n int) []Point {
	if n < 2 {
		n = 2
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Lerp(start, end, float64(i)/float64(n-1))
	}
	// avoid float drift on the final point
	pts[n-1] = end
	return pts
}

// ParseCoord parses a "lat,lng" string.
func ParseCoord(input string) (Point, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, input)
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("%w: %q out of range", ErrInvalidCoordinate, input)
	}

	return Point{Lat: lat, Lng: lng}, nil
}

// Bounds returns the south-west and north-east corners enclosing points.
func Bounds(points []Point) (Point, Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	sw, ne := points[0], points[0]
	for _, p := range points[1:] {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lng = math.Min(sw.Lng, p.Lng)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lng = math.Max(ne.Lng, p.Lng)
	}
	return sw, ne
}
