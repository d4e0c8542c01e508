package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rghosal/handlight/internal/app"
	"github.com/rghosal/handlight/internal/gesture"
)

func TestEventsHandler_Broadcast(t *testing.T) {
	h := NewEventsHandler(nil)
	ts := httptest.NewServer(h)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// The handler registers the client inside ServeHTTP; give it a moment.
	deadline := time.Now().Add(time.Second)
	for {
		h.mu.RLock()
		n := len(h.clients)
		h.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	snap := app.Snapshot{SessionID: "test", LightOn: true, Brightness: 70}
	h.Publish(gesture.Event{Kind: gesture.BrightnessChange, Delta: 20}, snap)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message error = %v", err)
	}

	var msg eventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}

	if msg.Event != "brightness_change" {
		t.Errorf("event = %q, want brightness_change", msg.Event)
	}
	if msg.Delta != 20 {
		t.Errorf("delta = %d, want 20", msg.Delta)
	}
	if msg.State.Brightness != 70 {
		t.Errorf("state brightness = %d, want 70", msg.State.Brightness)
	}
}

func TestEventsHandler_NilLoggerRejectsPlainGET(t *testing.T) {
	h := NewEventsHandler(nil)

	// A request without the upgrade headers fails the handshake; the
	// handler must log and return rather than dereference a nil logger.
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestEventsHandler_SkipsNoAction(t *testing.T) {
	h := NewEventsHandler(nil)
	ts := httptest.NewServer(h)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	h.Publish(gesture.Event{Kind: gesture.NoAction}, app.Snapshot{})

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no message for a no-action event")
	}
}
