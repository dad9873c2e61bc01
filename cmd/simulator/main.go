package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/config"
	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/mqttbus"
	"github.com/ukydev/emergency-priority/internal/narration"
	"github.com/ukydev/emergency-priority/internal/randengine"
	"github.com/ukydev/emergency-priority/internal/route"
	"github.com/ukydev/emergency-priority/internal/simulation"
)

// run drives a single simulation to the destination and returns the final snapshot.
func run(ctx context.Context, cfg *config.Config, req simulation.StartRequest) (models.Snapshot, error) {
	locations, err := geo.LoadDirectory(cfg.LocationsFile)
	if err != nil {
		return models.Snapshot{}, err
	}

	var provider route.Provider
	if cfg.OSRMURL != "" {
		provider = route.NewOSRMClient(cfg.OSRMURL, cfg.RouteTimeout)
	}

	arrived := make(chan models.Snapshot, 1)
	opts := []simulation.Option{
		simulation.WithPublisher(simulation.PublisherFunc(func(s models.Snapshot) {
			if s.HasReachedDestination {
				select {
				case arrived <- s:
				default:
				}
			}
		})),
	}

	narrators := narration.Multi{narration.NewLogger()}
	if cfg.MQTTBroker != "" {
		bus, err := mqttbus.Connect(cfg.MQTT())
		if err != nil {
			return models.Snapshot{}, err
		}
		defer bus.Close()
		narrators = append(narrators, bus)
		opts = append(opts, simulation.WithPublisher(bus), simulation.WithViewport(bus))
	}
	opts = append(opts, simulation.WithNarrator(narrators))

	ctrl := simulation.New(provider, locations, randengine.New(cfg.Seed), cfg.SimulationOptions(), opts...)
	defer ctrl.Close()

	if _, err := ctrl.Start(ctx, req); err != nil {
		return models.Snapshot{}, err
	}

	select {
	case s := <-arrived:
		return s, nil
	case <-ctx.Done():
		return ctrl.Snapshot(), ctx.Err()
	}
}

func main() {
	fs, cfg := config.NewFlagSet("simulator")
	var req simulation.StartRequest
	fs.StringVar(&req.Start, "start", "Sector 17", "start location name or lat,lng")
	fs.StringVar(&req.Destination, "destination", "PGI Hospital", "destination location name or lat,lng")
	fs.StringVar(&req.VehicleType, "vehicle", string(models.VehicleAmbulance), "vehicle type: ambulance or fire")
	if err := config.Parse(fs, cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"start":       req.Start,
		"destination": req.Destination,
		"vehicle":     req.VehicleType,
	}).Info("Starting emergency vehicle simulation")

	snap, err := run(ctx, cfg, req)
	if err != nil {
		log.WithError(err).Error("Simulation did not complete")
		os.Exit(1)
	}

	fields := log.Fields{
		"run_id":      snap.RunID,
		"distance_km": fmt.Sprintf("%.2f", snap.Vehicle.DistanceKm),
		"speed_kmh":   fmt.Sprintf("%.1f", snap.Vehicle.SpeedKmh),
		"duration":    snap.Vehicle.Duration,
		"lights":      len(snap.Lights),
		"steps":       len(snap.Steps),
		"degraded":    snap.Degraded,
	}
	if snap.ETA != nil {
		fields["eta_normal_s"] = snap.ETA.NormalSeconds
		fields["eta_optimized_s"] = snap.ETA.OptimizedSeconds
	}
	log.WithFields(fields).Info("Simulation complete")
}
