package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"navbot/internal/camera"
	"navbot/internal/logger"
	"navbot/internal/nav"
	"navbot/internal/vision"
)

// SetModeHandler switches the active detector. The mode name is the final
// path element: /api/mode/{fiducial|object|color|block}.
func SetModeHandler(manager *vision.Manager, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/mode/")

		mode, err := vision.ParseMode(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}

		if err := manager.SetMode(mode); err != nil {
			log.Error("Mode switch to %s failed: %v", mode, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "mode": manager.Mode()})
	}
}

// StatusHandler reports detector mode, detection count, debug timing, the
// navigation state and camera health.
func StatusHandler(manager *vision.Manager, navigator *nav.Navigator, cam *camera.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := manager.Status()

		cameraErr := ""
		if err := cam.Err(); err != nil {
			cameraErr = err.Error()
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"mode":       status.Mode,
			"count":      status.Count,
			"has_result": status.HasResult,
			"debug":      status.Debug,
			"nav_state":  navigator.State(),
			"camera_err": cameraErr,
		})
	}
}

// ResultHandler returns the full current detection result.
func ResultHandler(manager *vision.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := manager.Latest()
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"has_result": false})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
