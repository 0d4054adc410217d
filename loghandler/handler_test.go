package loghandler

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandleFormatsTagAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, slog.LevelInfo)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "card flipped", 0)
	r.AddAttrs(slog.String("tag", "board"), slog.Int("row", 1))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[board] card flipped row=1") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWithAttrsCarriesIntoLaterRecords(t *testing.T) {
	var buf bytes.Buffer
	base := NewCompactHandler(&buf, slog.LevelInfo)
	withConn := base.WithAttrs([]slog.Attr{slog.String("tag", "transport"), slog.String("conn", "abc")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "connected", 0)
	if err := withConn.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[transport] connected conn=abc") {
		t.Errorf("expected preset attrs to appear, got %q", out)
	}
}

func TestWriteValueQuotesWhitespace(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, slog.LevelInfo)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.String("reason", "card index out of bounds"))
	_ = h.Handle(context.Background(), r)
	if !strings.Contains(buf.String(), `reason="card index out of bounds"`) {
		t.Errorf("expected quoted value, got %q", buf.String())
	}
}

func TestEnabledRespectsLevel(t *testing.T) {
	h := NewCompactHandler(&bytes.Buffer{}, slog.LevelWarn)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}
