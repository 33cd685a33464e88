// Package logtest provides an slog.Handler that records log lines for
// assertions in tests.
package logtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Entry is one recorded log line.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// String renders the entry as "LEVEL message".
func (e Entry) String() string {
	return fmt.Sprintf("%s %s", e.Level, e.Message)
}

// Recorder is an slog.Handler that keeps every handled record in memory.
// Recorders derived through WithAttrs or WithGroup share the same buffer.
type Recorder struct {
	level slog.Leveler
	attrs []slog.Attr
	state *state
}

type state struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns a recorder handling records at or above level.
func NewRecorder(level slog.Leveler) *Recorder {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Recorder{level: level, state: &state{}}
}

// Logger returns an slog.Logger writing to the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level.Level()
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, rec.NumAttrs()+len(r.attrs))
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.entries = append(r.state.entries, Entry{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &Recorder{level: r.level, attrs: merged, state: r.state}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (r *Recorder) WithGroup(string) slog.Handler {
	return r
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	out := make([]Entry, len(r.state.entries))
	copy(out, r.state.entries)
	return out
}

// Lines returns the recorded entries rendered as "LEVEL message".
func (r *Recorder) Lines() []string {
	entries := r.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

// Messages returns only the recorded messages.
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

// Contains reports whether any recorded message contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, m := range r.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset discards all recorded entries.
func (r *Recorder) Reset() {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.entries = nil
}
