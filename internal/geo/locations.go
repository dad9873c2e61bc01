package geo

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ErrUnknownLocation = errors.New("unknown location")

// Location is a named entry in the location lookup table.
type Location struct {
	Name   string `mapstructure:"name" json:"name"`
	Coords string `mapstructure:"coords" json:"coords"` // "lat,lng"
}

// DefaultLocations are the predefined Chandigarh locations.
var DefaultLocations = []Location{
	{Name: "Sector 17", Coords: "30.7433,76.7839"},
	{Name: "PGI Hospital", Coords: "30.7649,76.7764"},
	{Name: "Elante Mall", Coords: "30.7056,76.8013"},
	{Name: "Sukhna Lake", Coords: "30.7426,76.8089"},
	{Name: "Rock Garden", Coords: "30.7512,76.8044"},
	{Name: "ISBT Sector 43", Coords: "30.7076,76.7913"},
	{Name: "Chandigarh Railway Station", Coords: "30.6798,76.8078"},
	{Name: "Government Medical College", Coords: "30.7372,76.7698"},
	{Name: "Panjab University", Coords: "30.7603,76.7664"},
	{Name: "Chandigarh Airport", Coords: "30.6735,76.7885"},
}

type locationFile struct {
	Locations []Location `mapstructure:"locations"`
}

// Directory resolves user input against the named-location table.
type Directory struct {
	mu        sync.RWMutex
	locations []Location
}

// NewDirectory creates a directory over a fixed table.
func NewDirectory(locations []Location) *Directory {
	return &Directory{locations: append([]Location(nil), locations...)}
}

// LoadDirectory reads the table from a YAML file and keeps watching it for
// changes. An empty path yields the default table.
func LoadDirectory(path string) (*Directory, error) {
	if path == "" {
		return NewDirectory(DefaultLocations), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}
	locations, err := decodeLocations(v)
	if err != nil {
		return nil, err
	}

	d := NewDirectory(locations)
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeLocations(v)
		if err != nil {
			log.WithError(err).WithField("file", e.Name).Warn("Ignoring invalid locations file")
			return
		}
		d.replace(updated)
		log.WithFields(log.Fields{"file": e.Name, "count": len(updated)}).Info("Reloaded locations")
	})
	v.WatchConfig()

	return d, nil
}

func decodeLocations(v *viper.Viper) ([]Location, error) {
	var f locationFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	for _, l := range f.Locations {
		if strings.TrimSpace(l.Name) == "" {
			return nil, fmt.Errorf("decode locations: entry with empty name")
		}
		if _, err := ParseCoord(l.Coords); err != nil {
			return nil, fmt.Errorf("decode locations: %s: %w", l.Name, err)
		}
	}
	return f.Locations, nil
}

func (d *Directory) replace(locations []Location) {
	d.mu.Lock()
	d.locations = locations
	d.mu.Unlock()
}

// List returns a copy of the table.
func (d *Directory) List() []Location {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Location(nil), d.locations...)
}

// Resolve maps a location name (case-insensitive) or a "lat,lng" string to a point.
func (d *Directory) Resolve(input string) (Point, error) {
	input = strings.TrimSpace(input)

	d.mu.RLock()
	loc, found := lo.Find(d.locations, func(l Location) bool {
		return strings.EqualFold(l.Name, input)
	})
	d.mu.RUnlock()

	if found {
		return ParseCoord(loc.Coords)
	}
	if !strings.Contains(input, ",") {
		return Point{}, fmt.Errorf("%w: %q", ErrUnknownLocation, input)
	}
	return ParseCoord(input)
}
