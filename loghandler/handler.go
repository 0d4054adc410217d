// Package loghandler provides a compact slog.Handler for the board
// server: timestamp + optional [tag] prefix + message + attrs, no level
// prefix. Adapted from the teacher's loghandler package; unlike the
// original, WithAttrs here actually carries preset attributes into every
// subsequent record (the teacher's version discarded them), since the
// transport and sim packages build their loggers with Logger.With (a tag,
// plus a bot name in sim) and expect those attributes to show up on every
// line they log.
package loghandler

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const timeFormat = "2006/01/02 15:04:05"

const tagKey = "tag"

// CompactHandler writes logs as:
//
//	2006/01/02 15:04:05 [tag] message key=value ...
//
// An attribute with key "tag" is pulled out and rendered as the [tag]
// prefix instead of appearing in the key=value list; if more than one
// "tag" attribute reaches a single record (one from WithAttrs, one from
// the call site), the call site's wins.
type CompactHandler struct {
	w     io.Writer
	level slog.Level

	mu     *sync.Mutex // shared across WithAttrs-derived handlers writing to the same w
	preset []slog.Attr
}

// NewCompactHandler returns a handler that writes to w, emitting records
// at level or above.
func NewCompactHandler(w io.Writer, level slog.Level) *CompactHandler {
	return &CompactHandler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes one record.
func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	tag := ""
	rest := make([]slog.Attr, 0, len(h.preset)+r.NumAttrs())
	collect := func(a slog.Attr) bool {
		if a.Key == tagKey {
			if a.Value.Kind() == slog.KindString {
				tag = a.Value.String()
			}
			return true
		}
		rest = append(rest, a)
		return true
	}
	for _, a := range h.preset {
		collect(a)
	}
	r.Attrs(collect)

	var b strings.Builder
	b.WriteString(r.Time.Format(timeFormat))
	b.WriteByte(' ')
	if tag != "" {
		b.WriteByte('[')
		b.WriteString(tag)
		b.WriteString("] ")
	}
	b.WriteString(r.Message)
	for _, a := range rest {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		writeValue(&b, a.Value.String())
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// writeValue quotes v if it contains whitespace, so multi-word attribute
// values don't get misread as separate key=value pairs downstream.
func writeValue(b *strings.Builder, v string) {
	if strings.ContainsAny(v, " \t\n") {
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `\"`))
		b.WriteByte('"')
		return
	}
	b.WriteString(v)
}

// WithAttrs returns a handler that includes attrs on every record it
// subsequently handles, in addition to the record's own attributes.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]slog.Attr, 0, len(h.preset)+len(attrs))
	merged = append(merged, h.preset...)
	merged = append(merged, attrs...)
	return &CompactHandler{w: h.w, level: h.level, mu: h.mu, preset: merged}
}

// WithGroup returns the handler unchanged; compact output has no concept
// of attribute groups.
func (h *CompactHandler) WithGroup(_ string) slog.Handler {
	return h
}
