package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"

	"navbot/internal/chassis"
	"navbot/internal/logger"
)

const rotScale = 0.008 // slider speed to rotation rate

// DriveControl translates manual drive actions into chassis commands, with
// adjustable move and turn speeds.
type DriveControl struct {
	chassis chassis.Chassis
	logger  *logger.Logger

	mu        sync.Mutex
	moveSpeed float64
	turnSpeed float64
}

func NewDriveControl(ch chassis.Chassis, moveSpeed, turnSpeed float64, log *logger.Logger) *DriveControl {
	return &DriveControl{
		chassis:   ch,
		logger:    log,
		moveSpeed: moveSpeed,
		turnSpeed: turnSpeed,
	}
}

func (d *DriveControl) speeds() (move, turn float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.moveSpeed, d.turnSpeed
}

// Apply executes a named drive action.
func (d *DriveControl) Apply(action string) error {
	move, turn := d.speeds()
	diag := move / math.Sqrt2

	switch action {
	case "forward":
		return d.chassis.SetVelocity(0, move, 0)
	case "backward":
		return d.chassis.SetVelocity(0, -move, 0)
	case "left":
		return d.chassis.SetVelocity(-move, 0, 0)
	case "right":
		return d.chassis.SetVelocity(move, 0, 0)
	case "diag_nw":
		return d.chassis.SetVelocity(-diag, diag, 0)
	case "diag_ne":
		return d.chassis.SetVelocity(diag, diag, 0)
	case "diag_sw":
		return d.chassis.SetVelocity(-diag, -diag, 0)
	case "diag_se":
		return d.chassis.SetVelocity(diag, -diag, 0)
	case "turn_left":
		return d.chassis.SetVelocity(0, 0, -turn*rotScale)
	case "turn_right":
		return d.chassis.SetVelocity(0, 0, turn*rotScale)
	case "stop":
		return d.chassis.Stop()
	}
	return fmt.Errorf("unknown drive action %q", action)
}

// SetSpeed updates a speed slider, clamped to [10, 100].
func (d *DriveControl) SetSpeed(kind string, value float64) error {
	value = math.Max(10, math.Min(100, value))

	d.mu.Lock()
	defer d.mu.Unlock()
	switch kind {
	case "move":
		d.moveSpeed = value
	case "rot":
		d.turnSpeed = value
	default:
		return fmt.Errorf("invalid speed type %q", kind)
	}
	return nil
}

// DriveHandler accepts {"action": name} POSTs for manual driving.
func DriveHandler(drive *DriveControl, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
			return
		}

		if err := drive.Apply(req.Action); err != nil {
			log.Error("Drive action failed: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// SpeedHandler accepts {"type": "move"|"rot", "value": n} POSTs.
func SpeedHandler(drive *DriveControl) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type  string  `json:"type"`
			Value float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
			return
		}

		if err := drive.SetSpeed(req.Type, req.Value); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
