package handlers

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

func toOrb(p geo.Point) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// SnapshotFeatures renders the route, vehicle, endpoints and lights of a
// snapshot as GeoJSON features, each tagged with a "kind" property.
func SnapshotFeatures(s models.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if s.Status == models.RunIdle {
		return fc
	}

	if len(s.Polyline) >= 2 {
		line := make(orb.LineString, 0, len(s.Polyline))
		for _, p := range s.Polyline {
			line = append(line, toOrb(p))
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["degraded"] = s.Degraded
		fc.Append(f)
	}

	origin := geojson.NewFeature(toOrb(s.Origin))
	origin.Properties["kind"] = "origin"
	fc.Append(origin)

	dest := geojson.NewFeature(toOrb(s.Destination))
	dest.Properties["kind"] = "destination"
	fc.Append(dest)

	vehicle := geojson.NewFeature(toOrb(s.Position))
	vehicle.ID = s.RunID
	vehicle.Properties["kind"] = "vehicle"
	vehicle.Properties["vehicle_type"] = string(s.VehicleType)
	vehicle.Properties["progress"] = s.Progress
	vehicle.Properties["arrived"] = s.HasReachedDestination
	fc.Append(vehicle)

	for _, l := range s.Lights {
		f := geojson.NewFeature(toOrb(l.Position))
		f.ID = l.ID
		f.Properties["kind"] = "traffic_light"
		f.Properties["status"] = string(l.Status)
		f.Properties["action"] = string(l.Action)
		f.Properties["distance_m"] = l.DistanceMeters
		fc.Append(f)
	}
	return fc
}
