package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/lucasb-eyer/go-colorful"

	"navbot/internal/calibration"
	"navbot/internal/camera"
	"navbot/internal/chassis"
	"navbot/internal/config"
	"navbot/internal/handlers"
	"navbot/internal/logger"
	"navbot/internal/models"
	"navbot/internal/nav"
	"navbot/internal/repository/sqlite"
	"navbot/internal/routes"
	"navbot/internal/storage"
	"navbot/internal/telemetry"
	"navbot/internal/vision"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	camera    *camera.Source
	manager   *vision.Manager
	navigator *nav.Navigator
	chassis   chassis.Chassis
	drive     *handlers.DriveControl
	markers   nav.MarkerTable
	db        *sqlite.DB
	events    *sqlite.EventRepository
	recorder  *storage.Recorder
	eventSvc  *storage.EventService
	hub       *telemetry.Hub
	clock     clock.Clock

	stop chan struct{}
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	intr, err := calibration.Load(cfg.CalibrationPath)
	if err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}

	cam := camera.New(cfg, intr, log)

	detectors, err := buildDetectors(cfg, intr)
	if err != nil {
		return nil, err
	}

	initial, err := vision.ParseMode(cfg.InitialMode)
	if err != nil {
		return nil, fmt.Errorf("initial mode: %w", err)
	}
	manager, err := vision.NewManager(cam, detectors, initial, log)
	if err != nil {
		return nil, err
	}

	var ch chassis.Chassis
	if cfg.ChassisURL != "" {
		ch = chassis.NewBridge(cfg.ChassisURL, log)
	} else {
		ch = chassis.NewNop(log)
	}

	markers, err := nav.ParseMarkerTable(cfg.MarkerTable)
	if err != nil {
		return nil, fmt.Errorf("marker table: %w", err)
	}

	clk := clock.New()
	navigator := nav.NewNavigator(manager, ch, nav.Options{
		Params:      nav.ParamsFromConfig(cfg),
		PreferredID: cfg.TargetMarkerID,
		LossTimeout: cfg.LossTimeout,
		Period:      cfg.ControlPeriod,
		Clock:       clk,
	}, log)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	events := sqlite.NewEventRepository(db)

	// Navigation state changes go into the same event log as detections.
	navigator.OnTransition = func(from, to nav.State) {
		ev := &models.Event{
			At:       time.Now(),
			Mode:     "nav",
			Label:    string(to),
			MarkerID: -1,
		}
		if _, err := events.Insert(ev); err != nil {
			log.Warning("Failed to record nav transition %s -> %s: %v", from, to, err)
		}
	}

	recorder := storage.NewRecorder(cfg.SnapshotDirectory, cfg.SnapshotLimit, log)
	eventSvc := storage.NewEventService(manager, cam, events, recorder, markers, log)

	return &App{
		config:    cfg,
		logger:    log,
		camera:    cam,
		manager:   manager,
		navigator: navigator,
		chassis:   ch,
		drive:     handlers.NewDriveControl(ch, cfg.DriveSpeed, cfg.TurnSpeed, log),
		markers:   markers,
		db:        db,
		events:    events,
		recorder:  recorder,
		eventSvc:  eventSvc,
		hub:       telemetry.NewHub(log),
		clock:     clk,
		stop:      make(chan struct{}),
	}, nil
}

func buildDetectors(cfg *config.Config, intr *calibration.Intrinsics) (map[vision.Mode]vision.Detector, error) {
	colorTargets, err := vision.ParseColorTargets(cfg.ColorTargets)
	if err != nil {
		return nil, fmt.Errorf("color targets: %w", err)
	}

	blockColor, err := colorful.Hex(cfg.BlockColor)
	if err != nil {
		return nil, fmt.Errorf("block color: %w", err)
	}

	return map[vision.Mode]vision.Detector{
		vision.ModeFiducial: vision.NewFiducialDetector(intr, cfg.MarkerSize),
		vision.ModeObject:   vision.NewObjectDetector(cfg.ModelPath, cfg.ModelConfigPath, cfg.DetectConfidence),
		vision.ModeColor:    vision.NewColorDetector(colorTargets),
		vision.ModeBlock:    vision.NewBlockDetector(vision.RangesFor(blockColor), cfg.BlockMinArea, cfg.BlockMinFill),
	}, nil
}

func (a *App) Run() error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	// Background services
	go a.manager.Run()
	go a.hub.Run(a.stop)
	go a.recorder.Run(a.config.SnapshotInterval, a.stop)
	go a.eventSvc.Run(time.Second, a.stop)
	go a.broadcastStatus()

	router := routes.SetupRoutes(routes.Deps{
		Camera:    a.camera,
		Manager:   a.manager,
		Navigator: a.navigator,
		Chassis:   a.chassis,
		Drive:     a.drive,
		Markers:   a.markers,
		Events:    a.events,
		Hub:       a.hub,
		Clock:     a.clock,
		Logger:    a.logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	a.logger.Info("Navbot server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Initial detection mode: %s", a.manager.Mode())
	a.logger.Info("Chassis bridge: %s", a.config.ChassisURL)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdown(server)
		return err
	case sig := <-quit:
		a.logger.Info("Received %v, shutting down", sig)
		a.shutdown(server)
		return nil
	}
}

// broadcastStatus pushes a status snapshot to telemetry viewers twice a
// second until the app stops.
func (a *App) broadcastStatus() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			if a.hub.ClientCount() == 0 {
				continue
			}

			status := a.manager.Status()
			payload := map[string]interface{}{
				"mode":       status.Mode,
				"count":      status.Count,
				"has_result": status.HasResult,
				"debug":      status.Debug,
				"nav_state":  a.navigator.State(),
			}
			data, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			a.hub.Broadcast(data)
		}
	}
}

// shutdown stops motion first, then the pipeline, then the HTTP server, so
// the chassis never keeps the last velocity after the process exits.
func (a *App) shutdown(server *http.Server) {
	a.navigator.Stop()
	if err := a.chassis.Stop(); err != nil {
		a.logger.Warning("Failed to stop chassis on shutdown: %v", err)
	}

	close(a.stop)
	a.manager.Stop()
	a.camera.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown: %v", err)
	}

	if err := a.db.Close(); err != nil {
		a.logger.Warning("Failed to close database: %v", err)
	}
}
