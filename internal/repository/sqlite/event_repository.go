package sqlite

import (
	"fmt"

	"navbot/internal/models"
)

// EventRepository stores and queries detection events in SQLite.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert adds a new detection event.
func (r *EventRepository) Insert(ev *models.Event) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO events (at, mode, label, marker_id, x, y, z, confidence, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.At, ev.Mode, ev.Label, ev.MarkerID, ev.X, ev.Y, ev.Z, ev.Confidence, ev.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	return result.LastInsertId()
}

// Recent returns the newest events, most recent first.
func (r *EventRepository) Recent(limit int) ([]models.Event, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, at, mode, label, marker_id, x, y, z, confidence, snapshot
		FROM events ORDER BY at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.At, &ev.Mode, &ev.Label, &ev.MarkerID, &ev.X, &ev.Y, &ev.Z, &ev.Confidence, &ev.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Labels returns all distinct labels ever recorded.
func (r *EventRepository) Labels() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT label FROM events ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// DeleteAll clears the event log.
func (r *EventRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}
