package scripting

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func waitForEvents(t *testing.T, w *Watcher, timeout time.Duration, match func([]WatchEvent) bool) []WatchEvent {
	t.Helper()
	var all []WatchEvent
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		all = append(all, w.Poll()...)
		if match(all) {
			return all
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for events, got %+v", all)
	return nil
}

func countPath(events []WatchEvent, path string) int {
	n := 0
	for _, ev := range events {
		if ev.Path == path {
			n++
		}
	}
	return n
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "player.lua")
	if err := os.WriteFile(path, []byte("-- v0"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(dir, 100*time.Millisecond, 16, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("-- burst"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	events := waitForEvents(t, w, 3*time.Second, func(evs []WatchEvent) bool {
		return countPath(evs, path) > 0
	})

	time.Sleep(300 * time.Millisecond)
	events = append(events, w.Poll()...)
	if got := countPath(events, path); got != 1 {
		t.Errorf("events for %s = %d, expected 1 after debounce", path, got)
	}
}

func TestNewWatcherClampsTinyDebounce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 3*time.Nanosecond, 4, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	if w.debounce != MinDebounce {
		t.Errorf("debounce = %v, expected clamp to %v", w.debounce, MinDebounce)
	}

	path := filepath.Join(dir, "camera.lua")
	if err := os.WriteFile(path, []byte("-- tiny"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvents(t, w, 3*time.Second, func(evs []WatchEvent) bool {
		return countPath(evs, path) > 0
	})
}

func TestWatcherPollNeverBlocks(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 50*time.Millisecond, 1, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	start := time.Now()
	if got := w.Poll(); len(got) != 0 {
		t.Errorf("Poll() = %v, expected no events", got)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Poll() took %v on an idle watcher", elapsed)
	}
}

func TestWatcherSeesNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 50*time.Millisecond, 16, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Close()

	sub := filepath.Join(dir, "ai")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// give the watcher time to add the new directory
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "agent.lua")
	if err := os.WriteFile(path, []byte("-- agent"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvents(t, w, 3*time.Second, func(evs []WatchEvent) bool {
		return countPath(evs, path) > 0
	})
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), 0, 0, log.New(io.Discard))
	if err == nil {
		t.Error("NewWatcher() on a missing dir succeeded, expected error")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0, 0, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v, expected nil", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v, expected nil", err)
	}
}
