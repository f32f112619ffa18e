package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"navbot/internal/config"
	"navbot/internal/logger"
)

type recordedCommand struct {
	vx, vy, omega float64
	stop          bool
}

type recordingChassis struct {
	mu       sync.Mutex
	commands []recordedCommand
}

func (r *recordingChassis) SetVelocity(vx, vy, omega float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, recordedCommand{vx: vx, vy: vy, omega: omega})
	return nil
}

func (r *recordingChassis) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, recordedCommand{stop: true})
	return nil
}

func (r *recordingChassis) last(t *testing.T) recordedCommand {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commands) == 0 {
		t.Fatal("no chassis command recorded")
	}
	return r.commands[len(r.commands)-1]
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
}

func TestDriveControl_Actions(t *testing.T) {
	diag := 40 / math.Sqrt2

	tests := []struct {
		action   string
		expected recordedCommand
	}{
		{"forward", recordedCommand{vy: 40}},
		{"backward", recordedCommand{vy: -40}},
		{"left", recordedCommand{vx: -40}},
		{"right", recordedCommand{vx: 40}},
		{"diag_nw", recordedCommand{vx: -diag, vy: diag}},
		{"diag_ne", recordedCommand{vx: diag, vy: diag}},
		{"diag_sw", recordedCommand{vx: -diag, vy: -diag}},
		{"diag_se", recordedCommand{vx: diag, vy: -diag}},
		{"turn_left", recordedCommand{omega: -35 * rotScale}},
		{"turn_right", recordedCommand{omega: 35 * rotScale}},
		{"stop", recordedCommand{stop: true}},
	}

	for _, tt := range tests {
		ch := &recordingChassis{}
		drive := NewDriveControl(ch, 40, 35, testLogger(t))

		if err := drive.Apply(tt.action); err != nil {
			t.Errorf("Apply(%q) failed: %v", tt.action, err)
			continue
		}
		if got := ch.last(t); got != tt.expected {
			t.Errorf("Apply(%q) sent %+v, expected %+v", tt.action, got, tt.expected)
		}
	}
}

func TestDriveControl_UnknownAction(t *testing.T) {
	drive := NewDriveControl(&recordingChassis{}, 40, 35, testLogger(t))
	if err := drive.Apply("teleport"); err == nil {
		t.Fatal("Apply accepted an unknown action")
	}
}

func TestDriveControl_SetSpeedClamps(t *testing.T) {
	ch := &recordingChassis{}
	drive := NewDriveControl(ch, 40, 35, testLogger(t))

	if err := drive.SetSpeed("move", 500); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	drive.Apply("forward")
	if got := ch.last(t); got.vy != 100 {
		t.Errorf("forward after clamp-high sent vy=%v, expected 100", got.vy)
	}

	if err := drive.SetSpeed("move", 1); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	drive.Apply("forward")
	if got := ch.last(t); got.vy != 10 {
		t.Errorf("forward after clamp-low sent vy=%v, expected 10", got.vy)
	}

	if err := drive.SetSpeed("warp", 50); err == nil {
		t.Fatal("SetSpeed accepted an unknown speed type")
	}
}

func TestDriveHandler(t *testing.T) {
	ch := &recordingChassis{}
	drive := NewDriveControl(ch, 40, 35, testLogger(t))
	handler := DriveHandler(drive, testLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/drive", strings.NewReader(`{"action":"forward"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := ch.last(t); got.vy != 40 {
		t.Errorf("handler sent %+v, expected vy=40", got)
	}
}

func TestDriveHandler_BadRequests(t *testing.T) {
	drive := NewDriveControl(&recordingChassis{}, 40, 35, testLogger(t))
	handler := DriveHandler(drive, testLogger(t))

	tests := []string{
		`{`,                      // malformed body
		`{"action":"teleport"}`,  // unknown action
	}

	for _, body := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/drive", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, expected 400", body, rec.Code)
		}
	}
}

func TestSpeedHandler(t *testing.T) {
	ch := &recordingChassis{}
	drive := NewDriveControl(ch, 40, 35, testLogger(t))
	handler := SpeedHandler(drive)

	req := httptest.NewRequest(http.MethodPost, "/api/speed", strings.NewReader(`{"type":"move","value":60}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	drive.Apply("forward")
	if got := ch.last(t); got.vy != 60 {
		t.Errorf("forward after speed update sent vy=%v, expected 60", got.vy)
	}
}
