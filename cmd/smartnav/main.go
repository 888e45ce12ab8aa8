package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"smartnav/internal/api"
	"smartnav/pkg/config"
	"smartnav/pkg/db"
	"smartnav/pkg/logging"
	"smartnav/pkg/model"
	"smartnav/pkg/nav"
	"smartnav/pkg/probe"
	"smartnav/pkg/provider"
	"smartnav/pkg/route"
	"smartnav/pkg/store"
	"smartnav/pkg/tracker"
	"smartnav/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/smartnav.yaml", "Path to config file")
	trace      = flag.Bool("trace", false, "Enable trace logging")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	logging.EnableTrace = *trace

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional .env for SMARTNAV_* overrides
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SmartNav Started", "version", version.Version, "config", configPath)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	probes := []probe.Probe{
		{
			Name:     "Database",
			Check:    func(ctx context.Context) error { return dbConn.PingContext(ctx) },
			Critical: true,
		},
		{
			Name: "Event log",
			Check: func(ctx context.Context) error {
				f, err := os.OpenFile(appCfg.Log.Events.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				return f.Close()
			},
			Critical: false,
		},
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	r, err := route.LoadGeoJSON(appCfg.Route.Path)
	if err != nil {
		return fmt.Errorf("failed to load route: %w", err)
	}
	slog.Info("Route loaded", "path", appCfg.Route.Path, "vertices", r.NumVertices(), "length_m", r.LengthM())

	src, err := provider.New(&appCfg.Provider, r)
	if err != nil {
		return fmt.Errorf("failed to initialize provider: %w", err)
	}
	defer src.Close()

	navH := api.NewNavHandler()
	hub := api.NewHub()
	defer hub.Close()
	tr := tracker.New()

	sink := newEventSink(ctx, st, r, navH, tr, appCfg.Provider.Type)
	session := nav.NewSession(navConfig(&appCfg.Nav), sink)
	if err := session.Start(r); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.Stop()

	go processFixes(ctx, session, src, st, navH, hub, tr, appCfg.Provider.Type)

	return runServer(ctx, appCfg, navH, st, hub, tr)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// navConfig maps the YAML tuning section onto the session config.
func navConfig(c *config.NavConfig) nav.Config {
	cfg := nav.DefaultConfig()
	cfg.ProcessNoise = c.ProcessNoise
	cfg.MaxAccuracyM = float64(c.MaxAccuracy)
	cfg.OffRouteDistanceM = float64(c.OffRouteDistance)
	cfg.OffRouteAccuracyGateM = float64(c.OffRouteAccuracyGate)
	cfg.OffRouteTrigger = c.OffRouteTrigger
	cfg.ArrivalRadiusM = float64(c.ArrivalRadius)
	cfg.SettleDelay = time.Duration(c.SettleDelay)
	cfg.MinETASpeedKmh = c.MinETASpeedKmh
	cfg.DefaultSpeedKmh = c.DefaultSpeedKmh
	return cfg
}

// newEventSink persists events, mirrors them to the event log and keeps
// the API handler's lifecycle state current.
func newEventSink(ctx context.Context, st store.Store, r *route.Route, navH *api.NavHandler, tr *tracker.Tracker, source string) nav.EventSink {
	return func(ev model.NavEvent) {
		logging.LogEvent(&ev)

		switch ev.Type {
		case model.EventSessionStart:
			if err := st.CreateTrip(ctx, ev.TripID, ev.Timestamp, r.LengthM()); err != nil {
				slog.Error("Failed to create trip", "error", err, "trip", ev.TripID)
			}
		case model.EventOffRoute:
			tr.TrackOffRoute(source)
		case model.EventArrived:
			if err := st.EndTrip(ctx, ev.TripID, ev.Timestamp, "arrived"); err != nil {
				slog.Error("Failed to end trip", "error", err, "trip", ev.TripID)
			}
		case model.EventSessionStop:
			if err := st.EndTrip(ctx, ev.TripID, ev.Timestamp, "stopped"); err != nil {
				slog.Error("Failed to end trip", "error", err, "trip", ev.TripID)
			}
			navH.SetState(model.StateIdle)
		}

		if err := st.SaveEvent(ctx, &ev); err != nil {
			slog.Error("Failed to persist event", "error", err, "type", ev.Type)
		}
	}
}

// processFixes drains the provider and routes each update to the API
// handler, the WebSocket hub and the store.
func processFixes(ctx context.Context, session *nav.Session, src provider.Provider, st store.Store, navH *api.NavHandler, hub *api.Hub, tr *tracker.Tracker, source string) {
	for fix := range src.Fixes() {
		update, err := session.OnFix(fix)
		if err != nil {
			// Session stopped or settled; nothing left to process.
			slog.Info("Fix processing stopped", "reason", err)
			return
		}
		tr.TrackFix(source)

		tripID := session.ID()
		navH.Update(tripID, &update)
		hub.Broadcast(tripID, &update)

		if err := st.SaveUpdate(ctx, tripID, &update); err != nil {
			slog.Error("Failed to persist update", "error", err)
			tr.TrackPersistFailure(source)
		} else {
			tr.TrackUpdateSaved(source)
		}

		if update.State == model.StateArrived {
			slog.Info("Arrived at destination", "trip", tripID)
			return
		}
	}
	slog.Info("Fix source exhausted")
}

func runServer(ctx context.Context, cfg *config.Config, navH *api.NavHandler, st store.Store, hub *api.Hub, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		navH,
		api.NewTripHandler(st),
		hub,
		api.NewStatsHandler(tr),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.TraceDefault("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
