package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"memoryboard/board"
)

// Push-mode alternative to GET /watch: one wsSnapshotMsg on connect, then
// one more each time board.Watch reports a change, until the connection
// closes. Grounded on the teacher's ws.Client read/write pump split, cut
// down to a single outbound stream since this board has no inbound
// client protocol to speak of — a flip still goes through POST /flip.
const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsMaxReadBytes = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan []byte, 16)
	pingInterval := time.Duration(s.cfg.WSPingIntervalSec) * time.Second

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.wsReadPump(conn, cancel)
	go s.wsWritePump(conn, send, pingInterval)
	s.wsWatchLoop(ctx, player, conn, send)
}

// wsReadPump drains control frames (pong, close) off the connection so
// gorilla/websocket can process them instead of the read buffer filling
// up, and cancels cancel once the client disconnects — the only way
// wsWatchLoop learns a hijacked connection died, since r.Context() isn't
// reliably cancelled for it. Mirrors the teacher's ws.Client.ReadPump.
func (s *Server) wsReadPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(wsMaxReadBytes)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsWatchLoop pushes a fresh snapshot onto send whenever the board
// changes. It owns the connection's lifetime: it returns (and closes
// send) when the client disconnects or the board.Watch loop itself
// fails.
func (s *Server) wsWatchLoop(ctx context.Context, player string, conn *websocket.Conn, send chan []byte) {
	defer close(send)
	defer conn.Close()

	if snap, err := s.board.Look(player); err == nil {
		pushSnapshot(s.log, send, snap)
	}

	for {
		if err := s.board.Watch(ctx); err != nil {
			if msg, merr := json.Marshal(wsErrorMsg{Type: "error", Error: err.Error()}); merr == nil {
				safeSend(s.log, send, msg)
			}
			return
		}
		snap, err := s.board.Look(player)
		if err != nil {
			if errIsBoardFault(err) {
				if msg, merr := json.Marshal(wsErrorMsg{Type: "error", Error: err.Error()}); merr == nil {
					safeSend(s.log, send, msg)
				}
				return
			}
			continue
		}
		pushSnapshot(s.log, send, snap)
	}
}

func pushSnapshot(log *slog.Logger, send chan []byte, snapshot string) {
	msg, err := json.Marshal(wsSnapshotMsg{Type: "snapshot", Snapshot: snapshot})
	if err != nil {
		return
	}
	safeSend(log, send, msg)
}

func errIsBoardFault(err error) bool {
	switch err {
	case board.ErrBadPlayerID:
		return true
	default:
		return false
	}
}

// wsWritePump drains send onto the websocket connection and keeps it
// alive with periodic pings, mirroring the teacher's ws.Client.WritePump.
func (s *Server) wsWritePump(conn *websocket.Conn, send chan []byte, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
