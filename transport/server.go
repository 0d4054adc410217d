// Package transport is the HTTP/websocket adapter in front of a
// board.Board: request parsing, routing, CORS, JSON encoding, and the
// long-poll/push-notification pair that lets many players observe a
// shared board promptly. Grounded on the teacher's ws.Hub/ws.Client
// (connection lifecycle), api.Handler (CORS + JSON helpers), and
// wsutil.SafeSend (non-blocking writes to a slow reader). It knows
// nothing about the board's internals — everything here is built on the
// exported board.Board API from spec §6.1.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"memoryboard/apperrors"
	"memoryboard/board"
	"memoryboard/config"
)

// Server adapts HTTP requests onto a board.Board.
type Server struct {
	cfg   *config.Config
	board *board.Board
	log   *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // keyed by player id
}

// NewServer builds a Server for b using cfg's timeouts, rate limits and
// reset token.
func NewServer(cfg *config.Config, b *board.Board, log *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		board:    b,
		log:      log.With("tag", "transport"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Handler returns the fully-routed http.Handler for this Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/flip", s.withCORS(s.handleFlip))
	mux.HandleFunc("/look", s.withCORS(s.handleLook))
	mux.HandleFunc("/watch", s.withCORS(s.handleWatch))
	mux.HandleFunc("/reset", s.withCORS(s.handleReset))
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) limiterFor(player string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[player]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RateLimitPerSec), s.cfg.RateLimitBurst)
		s.limiters[player] = l
	}
	return l
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, apperrors.ErrBadRequest)
		return
	}
	var req FlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrBadRequest)
		return
	}
	if !s.limiterFor(req.Player).Allow() {
		writeError(w, http.StatusTooManyRequests, apperrors.ErrBadRequest)
		return
	}
	if err := s.board.Flip(r.Context(), req.Player, req.Row, req.Col); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (s *Server) handleLook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, apperrors.ErrBadRequest)
		return
	}
	player := r.URL.Query().Get("player")
	snap, err := s.board.Look(player)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snap})
}

// handleWatch implements the long-poll adapter: it blocks on board.Watch
// until the version changes or cfg.WatchTimeoutSec elapses, whichever
// comes first, then renders a fresh snapshot (204 with no body on a bare
// timeout, so callers can cheaply loop without parsing an unchanged one).
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, apperrors.ErrBadRequest)
		return
	}
	player := r.URL.Query().Get("player")

	timeout := time.Duration(s.cfg.WatchTimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	err := s.board.Watch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		// client disconnected or request context cancelled
		return
	}

	snap, err := s.board.Look(player)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{Snapshot: snap})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, apperrors.ErrBadRequest)
		return
	}
	if s.cfg.ResetToken == "" || r.Header.Get("X-Reset-Token") != s.cfg.ResetToken {
		writeError(w, http.StatusUnauthorized, apperrors.ErrBadRequest)
		return
	}
	s.board.Reset()
	s.log.Info("board reset", "request_id", uuid.NewString())
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// writeBoardError maps board error-taxonomy sentinels to the HTTP status
// codes spec §6.4 assigns them: game-rule failures to 409, validation
// failures to 400, anything else to 500.
func writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNoCard), errors.Is(err, board.ErrContended), errors.Is(err, board.ErrSameCard):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, board.ErrOutOfBounds), errors.Is(err, board.ErrBadPlayerID):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
