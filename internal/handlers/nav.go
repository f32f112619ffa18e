package handlers

import (
	"net/http"

	"github.com/benbjohnson/clock"

	"navbot/internal/chassis"
	"navbot/internal/logger"
	"navbot/internal/nav"
	"navbot/internal/vision"
)

// NavStartHandler starts the navigation controller. Idempotent: starting
// twice is a no-op.
func NavStartHandler(navigator *nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		navigator.Start()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": navigator.State()})
	}
}

// NavStopHandler stops the navigation controller. Idempotent: stopping while
// idle is a no-op.
func NavStopHandler(navigator *nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		navigator.Stop()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": navigator.State()})
	}
}

// NavContinueHandler reads the closest visible marker and executes its
// mapped waypoint maneuver. The call blocks for the maneuver's duration, the
// same way a driver pressing "continue" would wait it out.
func NavContinueHandler(manager *vision.Manager, ch chassis.Chassis, markers nav.MarkerTable, clk clock.Clock, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := manager.Latest()
		if !ok || res.Mode != vision.ModeFiducial {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "status": "no fiducial result available"})
			return
		}

		var closest *vision.Item
		for i := range res.Items {
			item := &res.Items[i]
			if item.Pose == nil {
				continue
			}
			if closest == nil || item.Pose.Z < closest.Pose.Z {
				closest = item
			}
		}
		if closest == nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "status": "no marker detected"})
			return
		}

		name := markers.Name(closest.MarkerID)
		if !nav.KnownManeuver(name) {
			writeJSON(w, http.StatusOK, map[string]any{
				"ok": false, "marker": closest.MarkerID, "status": "no maneuver for marker",
			})
			return
		}

		log.Info("Executing waypoint maneuver %s for marker %d", name, closest.MarkerID)
		if err := nav.RunManeuver(ch, clk, name); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "marker": closest.MarkerID, "action": name})
	}
}
