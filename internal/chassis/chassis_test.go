package chassis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"navbot/internal/config"
	"navbot/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
}

func TestBridge_SetVelocity(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var gotCmd velocityCommand

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotCmd); err != nil {
			t.Errorf("Failed to decode command: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	bridge := NewBridge(server.URL, testLogger(t))
	if err := bridge.SetVelocity(350, -80, 0.24); err != nil {
		t.Fatalf("SetVelocity failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/velocity" {
		t.Errorf("path = %q, expected /velocity", gotPath)
	}
	if gotCmd.VxMM != 350 || gotCmd.VyMM != -80 || gotCmd.Omega != 0.24 {
		t.Errorf("command = %+v", gotCmd)
	}
}

func TestBridge_Stop(t *testing.T) {
	var mu sync.Mutex
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	bridge := NewBridge(server.URL, testLogger(t))
	if err := bridge.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/stop" {
		t.Errorf("path = %q, expected /stop", gotPath)
	}
}

func TestBridge_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "motor fault", http.StatusInternalServerError)
	}))
	defer server.Close()

	bridge := NewBridge(server.URL, testLogger(t))
	if err := bridge.SetVelocity(100, 0, 0); err == nil {
		t.Fatal("SetVelocity succeeded against a failing daemon")
	}
}

func TestBridge_Unreachable(t *testing.T) {
	bridge := NewBridge("http://127.0.0.1:1", testLogger(t))
	if err := bridge.Stop(); err == nil {
		t.Fatal("Stop succeeded against an unreachable daemon")
	}
}

func TestNop(t *testing.T) {
	n := NewNop(testLogger(t))
	if err := n.SetVelocity(100, 50, 0.1); err != nil {
		t.Errorf("SetVelocity failed: %v", err)
	}
	if err := n.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
