package models

import "time"

// Event is one recorded detection: what was seen, where it was relative to
// the camera, and which snapshot file shows it.
type Event struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	Mode       string    `json:"mode"`
	Label      string    `json:"label"`
	MarkerID   int       `json:"marker_id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	Confidence float64   `json:"confidence"`
	Snapshot   string    `json:"snapshot,omitempty"`
}
