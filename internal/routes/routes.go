package routes

import (
	"net/http"

	"github.com/benbjohnson/clock"

	"navbot/internal/camera"
	"navbot/internal/chassis"
	"navbot/internal/handlers"
	"navbot/internal/logger"
	"navbot/internal/nav"
	"navbot/internal/repository/sqlite"
	"navbot/internal/telemetry"
	"navbot/internal/vision"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Camera    *camera.Source
	Manager   *vision.Manager
	Navigator *nav.Navigator
	Chassis   chassis.Chassis
	Drive     *handlers.DriveControl
	Markers   nav.MarkerTable
	Events    *sqlite.EventRepository
	Hub       *telemetry.Hub
	Clock     clock.Clock
	Logger    *logger.Logger
}

// SetupRoutes registers the HTTP control surface.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Video and detection
	mux.HandleFunc("/video_feed", handlers.VideoFeedHandler(d.Camera, d.Manager, d.Markers, d.Logger))
	mux.HandleFunc("/api/mode/", handlers.SetModeHandler(d.Manager, d.Logger))
	mux.HandleFunc("/api/status", handlers.StatusHandler(d.Manager, d.Navigator, d.Camera))
	mux.HandleFunc("/api/result", handlers.ResultHandler(d.Manager))

	// Navigation
	mux.HandleFunc("/api/nav/start", handlers.NavStartHandler(d.Navigator))
	mux.HandleFunc("/api/nav/stop", handlers.NavStopHandler(d.Navigator))
	mux.HandleFunc("/api/nav/continue", handlers.NavContinueHandler(d.Manager, d.Chassis, d.Markers, d.Clock, d.Logger))

	// Manual drive
	mux.HandleFunc("/api/drive", handlers.DriveHandler(d.Drive, d.Logger))
	mux.HandleFunc("/api/speed", handlers.SpeedHandler(d.Drive))

	// Event log
	mux.HandleFunc("/api/events", handlers.EventsHandler(d.Events, d.Logger))
	mux.HandleFunc("/api/events/clear", handlers.ClearEventsHandler(d.Events, d.Logger))

	// Telemetry stream
	mux.HandleFunc("/api/telemetry", handlers.TelemetryHandler(d.Hub, d.Logger))

	return mux
}
