package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoryboard/board"
	"memoryboard/config"
)

func newTestServer(t *testing.T) (*Server, *board.Board) {
	t.Helper()
	b, err := board.New(2, 2, []string{"a", "a", "b", "b"})
	require.NoError(t, err)
	cfg := config.Defaults()
	cfg.ResetToken = "secret"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, b, log), b
}

func TestHandleFlipAndLook(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(FlipRequest{Player: "alice", Row: 0, Col: 0})
	resp, err := http.Post(srv.URL+"/flip", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	lookResp, err := http.Get(srv.URL + "/look?player=alice")
	require.NoError(t, err)
	defer lookResp.Body.Close()
	var snap SnapshotResponse
	require.NoError(t, json.NewDecoder(lookResp.Body).Decode(&snap))
	assert.NotEmpty(t, snap.Snapshot)
}

func TestHandleFlipBadPlayerIDReturns400(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(FlipRequest{Player: "bad id!", Row: 0, Col: 0})
	resp, err := http.Post(srv.URL+"/flip", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleFlipOutOfBoundsReturns400(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(FlipRequest{Player: "alice", Row: 9, Col: 9})
	resp, err := http.Post(srv.URL+"/flip", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleFlipSameCardReturns409(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(FlipRequest{Player: "alice", Row: 0, Col: 0})
	first, err := http.Post(srv.URL+"/flip", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	first.Body.Close()

	body2, _ := json.Marshal(FlipRequest{Player: "alice", Row: 0, Col: 0})
	resp, err := http.Post(srv.URL+"/flip", "application/json", bytes.NewReader(body2))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleResetRequiresToken(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/reset", nil)
	req.Header.Set("X-Reset-Token", "secret")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHandleWatchTimesOutWithNoChange(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.WatchTimeoutSec = 0 // expires essentially immediately
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/watch?player=alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/flip", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
