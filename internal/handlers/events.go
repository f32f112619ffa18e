package handlers

import (
	"net/http"
	"strconv"

	"navbot/internal/logger"
	"navbot/internal/repository/sqlite"
)

const defaultEventLimit = 50

// EventsHandler returns the most recent detection events.
func EventsHandler(repo *sqlite.EventRepository, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultEventLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		events, err := repo.Recent(limit)
		if err != nil {
			log.Error("Failed to query events: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to query events"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "events": events})
	}
}

// ClearEventsHandler empties the event log.
func ClearEventsHandler(repo *sqlite.EventRepository, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.DeleteAll(); err != nil {
			log.Error("Failed to clear events: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to clear events"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
