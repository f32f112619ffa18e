package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"navbot/internal/telemetry"
)

func TestTelemetryHandler_BroadcastAndShutdown(t *testing.T) {
	log := testLogger(t)
	hub := telemetry.NewHub(log)
	stop := make(chan struct{})
	go hub.Run(stop)

	server := httptest.NewServer(TelemetryHandler(hub, log))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial telemetry socket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, expected 1", hub.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}

	hub.Broadcast([]byte(`{"mode":"fiducial"}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if string(msg) != `{"mode":"fiducial"}` {
		t.Errorf("broadcast = %q", msg)
	}

	// Shutdown closes the viewer connection.
	close(stop)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection still open after hub shutdown")
	}

	// Late hub calls return instead of blocking their goroutines.
	released := make(chan struct{})
	go func() {
		hub.Unregister(nil)
		hub.Register(nil)
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("hub register calls blocked after shutdown")
	}

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("client count = %d after shutdown, expected 0", got)
	}
}
