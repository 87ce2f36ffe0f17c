package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seradorr/migrations/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	xpr := filepath.Join(dir, "proj.xpr")
	err := os.WriteFile(xpr, []byte("<Project/>"), 0644)
	require.NoError(t, err, "failed to create test file")

	// Create watcher with short debounce
	w, err := watcher.New(watcher.Config{
		Path:        xpr,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(xpr, []byte(fmt.Sprintf("<Project v=\"%d\"/>", i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
		// Expected - no second notification
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	xpr := filepath.Join(dir, "proj.xpr")
	other := filepath.Join(dir, "proj.xpr.bak")
	require.NoError(t, os.WriteFile(xpr, []byte("<Project/>"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        xpr,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(other, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
		// Expected
	}
}

func TestWatcher_ReplacedDescriptor(t *testing.T) {
	dir := t.TempDir()
	xpr := filepath.Join(dir, "proj.xpr")
	require.NoError(t, os.WriteFile(xpr, []byte("<Project/>"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        xpr,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Save the way editors do: write a temp file and rename it over.
	tmp := filepath.Join(dir, "proj.xpr.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("<Project v=\"2\"/>"), 0644))
	require.NoError(t, os.Rename(tmp, xpr))

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for replaced descriptor")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	xpr := filepath.Join(dir, "proj.xpr")
	require.NoError(t, os.WriteFile(xpr, []byte("<Project/>"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:        xpr,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "gone", "proj.xpr")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/proj.xpr")

	assert.Equal(t, "/test/proj.xpr", cfg.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDur)
}
