package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/wiretap/pkg/scrub"
)

func TestWatcher_ReloadsScrubbing(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	path := writeConfig(t, "scrubbing:\n  replacement: \"before\"\n")
	require.NoError(t, Initialize(path))

	s := scrub.NewDefault()
	require.NoError(t, ApplyScrubbing(s, GetConfig().Scrubbing))

	var reloads atomic.Int32
	w, err := NewWatcher(path, 20*time.Millisecond, nil, func(c *Config) {
		_ = ApplyScrubbing(s, c.Scrubbing)
		reloads.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("scrubbing:\n  replacement: \"after\"\n"), 0644))

	assert.Eventually(t, func() bool {
		return s.Snapshot().Replacement == "after"
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
	assert.Equal(t, "after", GetConfig().Scrubbing.Replacement)

	require.NoError(t, w.Stop())
	require.NoError(t, <-done)
}

func TestWatcher_InvalidFileKeepsPolicy(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	path := writeConfig(t, "scrubbing:\n  replacement: \"kept\"\n")
	require.NoError(t, Initialize(path))

	called := false
	w, err := NewWatcher(path, time.Millisecond, nil, func(*Config) { called = true })
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("scrubbing:\n  blacklist_pattern: \"(\"\n"), 0644))

	assert.Error(t, w.Reload())
	assert.False(t, called)
	assert.Equal(t, "kept", GetConfig().Scrubbing.Replacement)
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
