package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/emergency-priority/internal/auth"
	"github.com/ukydev/emergency-priority/internal/config"
	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/handlers"
	"github.com/ukydev/emergency-priority/internal/middleware"
	"github.com/ukydev/emergency-priority/internal/models"
	"github.com/ukydev/emergency-priority/internal/mqttbus"
	"github.com/ukydev/emergency-priority/internal/narration"
	"github.com/ukydev/emergency-priority/internal/randengine"
	"github.com/ukydev/emergency-priority/internal/route"
	"github.com/ukydev/emergency-priority/internal/simulation"
)

type app struct {
	controller *simulation.Controller
	auth       *auth.Service
	bus        *mqttbus.Bus
}

func (a *app) Close() {
	a.controller.Close()
	if a.bus != nil {
		a.bus.Close()
	}
}

func newApp(cfg *config.Config) (*app, error) {
	locations, err := geo.LoadDirectory(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}

	var provider route.Provider
	if cfg.OSRMURL != "" {
		provider = route.NewOSRMClient(cfg.OSRMURL, cfg.RouteTimeout)
	} else {
		log.Warn("No OSRM URL configured, all routes will be straight lines")
	}

	a := &app{auth: auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, cfg.Users()...)}
	if len(cfg.Users()) == 0 {
		log.Warn("No operator password hashes configured, login is disabled")
	}

	narrators := narration.Multi{narration.NewLogger()}
	opts := []simulation.Option{}
	if cfg.MQTTBroker != "" {
		bus, err := mqttbus.Connect(cfg.MQTT())
		if err != nil {
			return nil, err
		}
		a.bus = bus
		narrators = append(narrators, bus)
		opts = append(opts, simulation.WithViewport(bus), simulation.WithPublisher(bus))
	}
	opts = append(opts, simulation.WithNarrator(narrators))

	a.controller = simulation.New(provider, locations, randengine.New(cfg.Seed), cfg.SimulationOptions(), opts...)
	return a, nil
}

// NewRouter wires the HTTP API.
func NewRouter(sim handlers.Simulator, authService *auth.Service, loginRateLimit int) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	authHandler := handlers.NewAuthHandler(authService)
	simHandler := handlers.NewSimulationHandler(sim)

	view := authMiddleware.RequirePermission(models.ActionViewSimulation)
	start := authMiddleware.RequirePermission(models.ActionStartSimulation)
	reset := authMiddleware.RequirePermission(models.ActionResetSimulation)

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	router.Handle("/api/auth/login", rateLimiter.RateLimit(loginRateLimit, 60)(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.HandleFunc("/auth/profile", authHandler.GetProfile).Methods(http.MethodGet)
	api.Handle("/simulation", view(http.HandlerFunc(simHandler.Get))).Methods(http.MethodGet)
	api.Handle("/simulation/geojson", view(http.HandlerFunc(simHandler.GeoJSON))).Methods(http.MethodGet)
	api.Handle("/simulation/start", start(http.HandlerFunc(simHandler.Start))).Methods(http.MethodPost)
	api.Handle("/simulation/reset", reset(http.HandlerFunc(simHandler.Reset))).Methods(http.MethodPost)
	api.Handle("/routes/preview", view(http.HandlerFunc(simHandler.Preview))).Methods(http.MethodPost)
	api.Handle("/locations", view(http.HandlerFunc(simHandler.Locations))).Methods(http.MethodGet)

	return ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router)
}

func main() {
	cfg, err := config.Load("emergency-priority", os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	cfg.ConfigureLogging()

	a, err := newApp(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise")
	}
	defer a.Close()

	accessLog := log.StandardLogger().Writer()
	defer accessLog.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           ghandlers.CombinedLoggingHandler(accessLog, NewRouter(a.controller, a.auth, cfg.LoginRateLimit)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"listen":    cfg.Listen,
			"osrm_url":  cfg.OSRMURL,
			"mqtt":      cfg.MQTTBroker != "",
			"locations": len(a.controller.Locations()),
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
