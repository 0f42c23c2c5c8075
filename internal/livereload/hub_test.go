package livereload

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// handshake sends HELLO and waits for the ACK, which also guarantees the
// client has been registered
func handshake(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write HELLO: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read ACK: %v", err)
	}
	if msg["type"] != "ACK" {
		t.Fatalf("Expected ACK, got %v", msg)
	}
}

func TestHub_NotifyBroadcasts(t *testing.T) {
	hub := NewHub(true)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	handshake(t, a)
	handshake(t, b)

	if got := hub.Count(); got != 2 {
		t.Fatalf("Expected 2 clients, got %d", got)
	}

	sent := hub.Notify("reload", map[string]interface{}{"path": "transit-map.svg", "type": "ignored"})
	if sent != 2 {
		t.Errorf("Expected 2 deliveries, got %d", sent)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg["type"] != TypeReload {
			t.Errorf("Expected type %s, got %v", TypeReload, msg["type"])
		}
		if msg["path"] != "transit-map.svg" {
			t.Errorf("Expected path field, got %v", msg["path"])
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(true)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	handshake(t, conn)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected client to be removed, still %d", hub.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if sent := hub.Notify("reload", nil); sent != 0 {
		t.Errorf("Expected no deliveries, got %d", sent)
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(true)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	handshake(t, conn)
	hub.Close()

	if got := hub.Count(); got != 0 {
		t.Errorf("Expected 0 clients after Close, got %d", got)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected read to fail after Close")
	}
}

func TestHub_RejectsCrossOrigin(t *testing.T) {
	srv := httptest.NewServer(NewHub(false))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Error("Expected cross-origin upgrade to be rejected")
	}
}
