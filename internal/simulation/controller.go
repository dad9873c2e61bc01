// Package simulation drives an emergency vehicle along an acquired route,
// updating traffic lights and turn-by-turn progress on a fixed tick.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/randengine"
	"github.com/ukydev/emergency-priority/internal/route"
	"github.com/ukydev/emergency-priority/internal/trafficlight"
)

const (
	// OptimizedFactor scales the provider ETA for a vehicle with a priority corridor.
	OptimizedFactor = 0.75

	DefaultRouteTimeout = 10 * time.Second

	msgStart   = "Starting route guidance."
	msgArrived = "You have reached your destination."
)

var ErrInvalidInput = errors.New("invalid input")

// Options tunes a Controller. Zero values take defaults.
type Options struct {
	TickInterval   time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	LightCount     int
	FallbackPoints int
	RouteTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.MinDuration <= 0 {
		o.MinDuration = DefaultMinDuration
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	if o.MaxDuration < o.MinDuration {
		o.MinDuration, o.MaxDuration = o.MaxDuration, o.MinDuration
	}
	if o.LightCount <= 0 {
		o.LightCount = trafficlight.DefaultCount
	}
	if o.FallbackPoints < 2 {
		o.FallbackPoints = route.DefaultFallbackPoints
	}
	if o.RouteTimeout <= 0 {
		o.RouteTimeout = DefaultRouteTimeout
	}
	return o
}

// StartRequest names the endpoints of a run. Start and Destination accept a
// known location name or a "lat,lng" string.
type StartRequest struct {
	Start       string `json:"start"`
	Destination string `json:"destination"`
	VehicleType string `json:"vehicle_type"`
}

// Preview is a route computed without starting a run.
type Preview struct {
	Origin      geo.Point              `json:"origin"`
	Destination geo.Point              `json:"destination"`
	Polyline    []geo.Point            `json:"polyline"`
	Steps       []models.DirectionStep `json:"steps"`
	DistanceKm  float64                `json:"distance_km"`
	Degraded    bool                   `json:"degraded"`
	ETA         *models.ETA            `json:"eta,omitempty"`
}

type run struct {
	id        string
	vehicle   models.VehicleType
	origin    geo.Point
	dest      geo.Point
	status    models.RunStatus
	polyline  []geo.Point
	totalKm   float64
	lights    []models.TrafficLight
	steps     *StepTracker
	clock     *Clock
	position  geo.Point
	reached   bool
	degraded  bool
	eta       *models.ETA
	startedAt time.Time
}

// Option configures a Controller.
type Option func(*Controller)

func WithNarrator(n Narrator) Option    { return func(c *Controller) { c.narrator = n } }
func WithViewport(v MapViewport) Option { return func(c *Controller) { c.viewport = v } }
func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publishers = append(c.publishers, p) }
}
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// Controller owns at most one active run. A new Start or a Reset cancels the
// previous run's timer before anything else happens, and a route response
// that arrives after its run was superseded is discarded.
type Controller struct {
	opts       Options
	provider   route.Provider
	locations  *geo.Directory
	rng        trafficlight.Rand
	narrator   Narrator
	viewport   MapViewport
	publishers []Publisher
	now        func() time.Time

	mu     sync.Mutex
	run    *run
	cancel context.CancelFunc

	// held while collaborators are notified so they observe state in order
	emitMu sync.Mutex
}

// New creates a controller. provider may be nil, in which case every run
// uses a straight-line route.
func New(provider route.Provider, locations *geo.Directory, rng trafficlight.Rand, opts Options, options ...Option) *Controller {
	if locations == nil {
		locations = geo.NewDirectory(geo.DefaultLocations)
	}
	if rng == nil {
		rng = randengine.New(0)
	}
	c := &Controller{
		opts:      opts.withDefaults(),
		provider:  provider,
		locations: locations,
		rng:       rng,
		now:       time.Now,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

func (c *Controller) resolve(start, destination string) (geo.Point, geo.Point, error) {
	origin, err := c.locations.Resolve(start)
	if err != nil {
		return geo.Point{}, geo.Point{}, fmt.Errorf("%w: start: %v", ErrInvalidInput, err)
	}
	dest, err := c.locations.Resolve(destination)
	if err != nil {
		return geo.Point{}, geo.Point{}, fmt.Errorf("%w: destination: %v", ErrInvalidInput, err)
	}
	return origin, dest, nil
}

// Start validates the request, cancels any active run and begins acquiring a
// route in the background. It returns the new run ID.
func (c *Controller) Start(ctx context.Context, req StartRequest) (string, error) {
	origin, dest, err := c.resolve(req.Start, req.Destination)
	if err != nil {
		return "", err
	}
	vehicle, err := models.ParseVehicleType(req.VehicleType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r := &run{
		id:       uuid.NewString(),
		vehicle:  vehicle,
		origin:   origin,
		dest:     dest,
		status:   models.RunRouting,
		position: origin,
	}

	// the run outlives the request but ends on Reset, Close or the next Start
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.stopLocked()
	c.run = r
	c.cancel = cancel
	snap := c.snapshotLocked()
	c.emitMu.Lock()
	c.mu.Unlock()
	if c.narrator != nil {
		c.narrator.Cancel()
	}
	c.publish(snap)
	c.emitMu.Unlock()

	log.WithFields(log.Fields{
		"run_id":      r.id,
		"origin":      origin.String(),
		"destination": dest.String(),
		"vehicle":     vehicle,
	}).Info("Starting simulation")

	go c.acquire(runCtx, r)
	return r.id, nil
}

// acquire fetches the route for r. Cancelling ctx aborts the request and
// stops the run's timer.
func (c *Controller) acquire(ctx context.Context, r *run) {
	routeCtx, cancel := context.WithTimeout(ctx, c.opts.RouteTimeout)
	res, degraded := route.Acquire(routeCtx, c.provider, route.Request{
		Origin:      r.origin,
		Destination: r.dest,
		Mode:        route.ModeDriving,
	}, c.opts.FallbackPoints)
	cancel()

	if ctx.Err() != nil || !c.begin(r, res, degraded) {
		log.WithField("run_id", r.id).Info("Discarding route for superseded run")
		return
	}
	go c.loop(ctx, r)
}

// begin installs the acquired route on r. It reports false when r is no
// longer the active run.
func (c *Controller) begin(r *run, res *route.Result, degraded bool) bool {
	c.mu.Lock()
	if c.run != r {
		c.mu.Unlock()
		return false
	}

	now := c.now()
	r.polyline = res.Polyline
	r.totalKm = geo.TotalRouteDistanceKm(res.Polyline)
	r.lights = trafficlight.Generate(res.Polyline, c.opts.LightCount, c.rng, now)
	if r.lights == nil {
		r.lights = []models.TrafficLight{}
	}
	r.steps = NewStepTracker(res.Steps, r.totalKm)
	r.clock = NewClock(c.opts.TickInterval, c.rng.DurationBetween(c.opts.MinDuration, c.opts.MaxDuration))
	r.degraded = degraded
	r.eta = estimate(res, degraded)
	r.position = PositionAt(res.Polyline, 0)
	r.status = models.RunActive
	r.startedAt = now

	snap := c.snapshotLocked()
	bounds := append([]geo.Point{r.origin, r.dest}, lo.Map(r.lights, func(l models.TrafficLight, _ int) geo.Point {
		return l.Position
	})...)
	first, hasSteps := r.steps.Current()

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	log.WithFields(log.Fields{
		"run_id":      r.id,
		"points":      len(r.polyline),
		"distance_km": fmt.Sprintf("%.2f", r.totalKm),
		"lights":      len(r.lights),
		"steps":       r.steps.Len(),
		"duration":    r.clock.Total,
		"degraded":    degraded,
	}).Info("Route ready, vehicle dispatched")

	if c.viewport != nil {
		sw, ne := geo.Bounds(bounds)
		c.viewport.FitBounds(sw, ne)
	}
	if hasSteps {
		c.say(msgStart + " " + first.Instruction)
	} else {
		c.say(msgStart)
	}
	c.publish(snap)
	return true
}

func (c *Controller) loop(ctx context.Context, r *run) {
	ticker := time.NewTicker(r.clock.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.tick(r) {
				return
			}
		}
	}
}

// tick advances r by one interval. It returns false once r is finished or
// no longer active.
func (c *Controller) tick(r *run) bool {
	c.mu.Lock()
	if c.run != r || r.status != models.RunActive {
		c.mu.Unlock()
		return false
	}

	now := c.now()
	progress := r.clock.Tick()
	arrived := progress >= 1

	r.position = PositionAt(r.polyline, progress)
	if arrived {
		r.position = r.dest
	}
	trafficlight.UpdateAll(r.lights, r.position, now)

	var speech []string
	// on arrival only the destination message is spoken
	if r.steps.Advance(progress) && !arrived {
		if step, ok := r.steps.Current(); ok {
			speech = append(speech, step.Instruction)
		}
	}
	if arrived {
		r.reached = true
		r.status = models.RunArrived
		r.steps.CompleteAll()
		speech = append(speech, msgArrived)
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	}

	snap := c.snapshotLocked()
	firstTick := r.clock.Step == 1
	logProgress := arrived || r.clock.Step%progressLogEvery(r.clock) == 0

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	if c.viewport != nil {
		if firstTick {
			c.viewport.SetZoom(FollowZoom)
		}
		c.viewport.PanTo(snap.Position)
	}
	for _, text := range speech {
		c.say(text)
	}
	c.publish(snap)

	if logProgress {
		log.WithFields(log.Fields{
			"run_id":   r.id,
			"progress": fmt.Sprintf("%.0f%%", snap.ProgressPercent),
			"position": snap.Position.String(),
			"step":     snap.CurrentStepIndex,
		}).Info("Vehicle progress")
	}
	if arrived {
		log.WithField("run_id", r.id).Info("Vehicle reached destination")
	}
	return !arrived
}

func progressLogEvery(clock *Clock) int {
	n := clock.TotalSteps() / 10
	if n < 1 {
		return 1
	}
	return n
}

// Reset cancels the active run, if any, and returns to idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	prev := c.run
	c.stopLocked()
	c.run = nil
	snap := c.snapshotLocked()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	if prev != nil {
		log.WithField("run_id", prev.id).Info("Simulation reset")
	}
	if c.narrator != nil {
		c.narrator.Cancel()
	}
	c.publish(snap)
}

// Close stops any active run.
func (c *Controller) Close() {
	c.Reset()
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Locations lists the named places Start accepts.
func (c *Controller) Locations() []geo.Location {
	return c.locations.List()
}

// Preview acquires a route without touching the active run.
func (c *Controller) Preview(ctx context.Context, req StartRequest) (*Preview, error) {
	origin, dest, err := c.resolve(req.Start, req.Destination)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.RouteTimeout)
	defer cancel()

	res, degraded := route.Acquire(ctx, c.provider, route.Request{
		Origin:      origin,
		Destination: dest,
		Mode:        route.ModeDriving,
	}, c.opts.FallbackPoints)

	return &Preview{
		Origin:      origin,
		Destination: dest,
		Polyline:    res.Polyline,
		Steps:       res.Steps,
		DistanceKm:  geo.TotalRouteDistanceKm(res.Polyline),
		Degraded:    degraded,
		ETA:         estimate(res, degraded),
	}, nil
}

func estimate(res *route.Result, degraded bool) *models.ETA {
	if degraded || res.TotalDurationSeconds <= 0 {
		return nil
	}
	normal := int(res.TotalDurationSeconds)
	return &models.ETA{
		NormalSeconds:    normal,
		OptimizedSeconds: int(math.Floor(float64(normal) * OptimizedFactor)),
	}
}

func (c *Controller) snapshotLocked() models.Snapshot {
	r := c.run
	if r == nil {
		return models.Snapshot{
			Status: models.RunIdle,
			Lights: []models.LightView{},
			Steps:  []models.DirectionStep{},
		}
	}

	s := models.Snapshot{
		RunID:                 r.id,
		Status:                r.status,
		VehicleType:           r.vehicle,
		Origin:                r.origin,
		Destination:           r.dest,
		Polyline:              append([]geo.Point(nil), r.polyline...),
		Position:              r.position,
		Lights:                lo.Map(r.lights, func(l models.TrafficLight, _ int) models.LightView { return trafficlight.View(l, r.position) }),
		Steps:                 []models.DirectionStep{},
		HasReachedDestination: r.reached,
		Degraded:              r.degraded,
		ETA:                   r.eta,
	}
	if !r.startedAt.IsZero() {
		started := r.startedAt
		s.StartedAt = &started
	}
	if r.steps != nil {
		s.Steps = r.steps.Steps()
		s.CurrentStepIndex = r.steps.Index()
		s.StepsRevision = r.steps.Revision()
	}
	if r.clock != nil {
		s.Progress = r.clock.Progress()
		s.ProgressPercent = s.Progress * 100
		s.Vehicle = models.VehicleInfo{
			DistanceKm: r.totalKm,
			SpeedKmh:   r.totalKm / r.clock.Total.Hours(),
			Duration:   r.clock.Total,
			Elapsed:    r.clock.Elapsed(),
			Remaining:  r.clock.Remaining(),
		}
	}
	return s
}

func (c *Controller) say(text string) {
	if c.narrator == nil {
		log.WithField("text", text).Debug("Narration unavailable")
		return
	}
	c.narrator.Cancel()
	c.narrator.Speak(text)
}

func (c *Controller) publish(s models.Snapshot) {
	for _, p := range c.publishers {
		p.Publish(s)
	}
}
