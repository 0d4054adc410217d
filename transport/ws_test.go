package transport

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWSPushesInitialSnapshotThenUpdates(t *testing.T) {
	s, b := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?player=alice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	var msg wsSnapshotMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "snapshot" || msg.Snapshot == "" {
		t.Fatalf("unexpected initial message: %+v", msg)
	}

	if err := b.Flip(context.Background(), "bob", 0, 0); err != nil {
		t.Fatalf("flip: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data2, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read update: %v", err)
	}
	var msg2 wsSnapshotMsg
	if err := json.Unmarshal(data2, &msg2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg2.Type != "snapshot" {
		t.Fatalf("expected snapshot message, got %+v", msg2)
	}
}
