// Package config loads settings from flags, environment variables and an
// optional .env file. Every flag can also be set through its upper-case
// environment variable, e.g. -osrm-url or OSRM_URL.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/mqttbus"
	"github.com/ukydev/emergency-priority/internal/route"
	"github.com/ukydev/emergency-priority/internal/simulation"
	"github.com/ukydev/emergency-priority/internal/trafficlight"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

type Config struct {
	Listen   string
	LogLevel string

	OSRMURL        string
	RouteTimeout   time.Duration
	TickInterval   time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	LightCount     int
	FallbackPoints int
	Seed           uint64
	LocationsFile  string

	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	JWTSecret              string
	JWTExpiry              time.Duration
	DispatcherUser         string
	DispatcherPasswordHash string
	ViewerUser             string
	ViewerPasswordHash     string
	LoginRateLimit         int
}

// NewFlagSet registers the shared settings on a new flag set. Callers may
// add their own flags before calling Parse.
func NewFlagSet(name string) (*flag.FlagSet, *Config) {
	c := &Config{}
	set := flag.NewFlagSet(name, flag.ContinueOnError)

	set.StringVar(&c.Listen, "listen", ":8080", "HTTP listen address")
	set.StringVar(&c.LogLevel, "log-level", "info", "log level")

	set.StringVar(&c.OSRMURL, "osrm-url", DefaultOSRMURL, "OSRM base URL, empty for straight-line routes only")
	set.DurationVar(&c.RouteTimeout, "route-timeout", simulation.DefaultRouteTimeout, "route request timeout")
	set.DurationVar(&c.TickInterval, "tick-interval", simulation.DefaultTickInterval, "simulation tick interval")
	set.DurationVar(&c.MinDuration, "min-duration", simulation.DefaultMinDuration, "shortest run duration")
	set.DurationVar(&c.MaxDuration, "max-duration", simulation.DefaultMaxDuration, "longest run duration")
	set.IntVar(&c.LightCount, "light-count", trafficlight.DefaultCount, "traffic lights aimed for per route")
	set.IntVar(&c.FallbackPoints, "fallback-points", route.DefaultFallbackPoints, "points in a straight-line route")
	set.Uint64Var(&c.Seed, "seed", 0, "random seed, 0 for time-seeded")
	set.StringVar(&c.LocationsFile, "locations-file", "", "YAML file of named locations")

	set.StringVar(&c.MQTTBroker, "mqtt-broker", "", "MQTT broker URL, empty to disable")
	set.StringVar(&c.MQTTClientID, "mqtt-client-id", mqttbus.DefaultClientID, "MQTT client ID")
	set.StringVar(&c.MQTTUsername, "mqtt-username", "", "MQTT username")
	set.StringVar(&c.MQTTPassword, "mqtt-password", "", "MQTT password")
	set.StringVar(&c.MQTTTopicPrefix, "mqtt-topic-prefix", mqttbus.DefaultTopicPrefix, "MQTT topic prefix")

	set.StringVar(&c.JWTSecret, "jwt-secret", "", "JWT signing secret")
	set.DurationVar(&c.JWTExpiry, "jwt-expiry", 24*time.Hour, "JWT lifetime")
	set.StringVar(&c.DispatcherUser, "dispatcher-user", "dispatcher", "dispatcher username")
	set.StringVar(&c.DispatcherPasswordHash, "dispatcher-password-hash", "", "bcrypt hash of the dispatcher password")
	set.StringVar(&c.ViewerUser, "viewer-user", "viewer", "viewer username")
	set.StringVar(&c.ViewerPasswordHash, "viewer-password-hash", "", "bcrypt hash of the viewer password")
	set.IntVar(&c.LoginRateLimit, "login-rate-limit", 10, "login attempts per minute per client")

	return set, c
}

// Parse loads .env if present, then flags with environment fallback.
func Parse(fset *flag.FlagSet, c *Config, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Could not load .env file")
	}
	if err := ff.Parse(fset, args, ff.WithEnvVarNoPrefix()); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return c.Validate()
}

// Load parses the shared settings only.
func Load(name string, args []string) (*Config, error) {
	set, c := NewFlagSet(name)
	if err := Parse(set, c, args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick-interval must be positive")
	}
	if c.MinDuration <= 0 || c.MaxDuration < c.MinDuration {
		return fmt.Errorf("invalid duration range %s..%s", c.MinDuration, c.MaxDuration)
	}
	if c.LightCount < 1 {
		return fmt.Errorf("light-count must be at least 1")
	}
	if c.FallbackPoints < 2 {
		return fmt.Errorf("fallback-points must be at least 2")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	return nil
}

// ConfigureLogging applies the log level and formatter.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func (c *Config) SimulationOptions() simulation.Options {
	return simulation.Options{
		TickInterval:   c.TickInterval,
		MinDuration:    c.MinDuration,
		MaxDuration:    c.MaxDuration,
		LightCount:     c.LightCount,
		FallbackPoints: c.FallbackPoints,
		RouteTimeout:   c.RouteTimeout,
	}
}

func (c *Config) MQTT() mqttbus.Config {
	return mqttbus.Config{
		Broker:      c.MQTTBroker,
		ClientID:    c.MQTTClientID,
		Username:    c.MQTTUsername,
		Password:    c.MQTTPassword,
		TopicPrefix: c.MQTTTopicPrefix,
	}
}

// Users returns the operator accounts that have a password hash configured.
func (c *Config) Users() []models.User {
	var users []models.User
	if c.DispatcherUser != "" && c.DispatcherPasswordHash != "" {
		users = append(users, models.User{Username: c.DispatcherUser, PasswordHash: c.DispatcherPasswordHash, Role: models.RoleDispatcher, IsActive: true})
	}
	if c.ViewerUser != "" && c.ViewerPasswordHash != "" {
		users = append(users, models.User{Username: c.ViewerUser, PasswordHash: c.ViewerPasswordHash, Role: models.RoleViewer, IsActive: true})
	}
	return users
}
