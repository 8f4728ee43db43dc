package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skywatch/skywatch/internal/track"
	wsHub "github.com/skywatch/skywatch/internal/ws"
)

// --- helpers ----------------------------------------------------------------

// startHub starts a test HTTP server with the hub as its handler.
// Returns the ws:// URL and the hub.
func startHub(t *testing.T) (string, *wsHub.Hub) {
	t.Helper()

	hub := wsHub.New()
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), hub
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForClients blocks until the hub reports n connected clients.
func waitForClients(t *testing.T, hub *wsHub.Hub, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.Count() != n {
		select {
		case <-deadline:
			t.Fatalf("hub never reached %d clients (at %d)", n, hub.Count())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	return msg
}

var sighting = track.Sighting{
	Icao24:       "a671d3",
	Registration: "N514RS",
	ObservedAt:   time.Unix(30000, 0).UTC(),
}

// --- tests ------------------------------------------------------------------

func TestHub_PublishReachesClient(t *testing.T) {
	wsURL, hub := startHub(t)
	conn := dial(t, wsURL)
	waitForClients(t, hub, 1)

	hub.Publish(sighting)
	msg := readMessage(t, conn)

	var m map[string]interface{}
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["event"] != "sighting" {
		t.Errorf("event: got %v, want sighting", m["event"])
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	if data["registration"] != "N514RS" {
		t.Errorf("registration: got %v, want N514RS", data["registration"])
	}
	if data["icao24"] != "a671d3" {
		t.Errorf("icao24: got %v, want a671d3", data["icao24"])
	}
}

func TestHub_PublishReachesAllClients(t *testing.T) {
	wsURL, hub := startHub(t)
	conn1 := dial(t, wsURL)
	conn2 := dial(t, wsURL)
	waitForClients(t, hub, 2)

	hub.Publish(sighting)

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		if !strings.Contains(string(msg), "N514RS") {
			t.Errorf("client %d: message %s missing registration", i+1, msg)
		}
	}
}

func TestHub_PublishWithoutClients(t *testing.T) {
	_, hub := startHub(t)
	// Must not block or panic with nobody connected.
	hub.Publish(sighting)
	if hub.Count() != 0 {
		t.Errorf("Count: got %d, want 0", hub.Count())
	}
}

func TestHub_ClientDisconnectLowersCount(t *testing.T) {
	wsURL, hub := startHub(t)
	conn := dial(t, wsURL)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
