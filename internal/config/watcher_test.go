package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("plug_addr: 10.0.0.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(cfg)

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(zaptest.NewLogger(t), path, store, func(c *Config) {
		reloaded <- c
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 50 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("plug_addr: 10.0.0.2\nbattery_threshold: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		return store.Get().BatteryThreshold == 42
	})
	if !ok {
		t.Fatalf("store never picked up new config, has %+v", store.Get())
	}
	select {
	case c := <-reloaded:
		if c.PlugAddr != "10.0.0.2" {
			t.Errorf("callback config: got %q", c.PlugAddr)
		}
	case <-time.After(time.Second):
		t.Error("onReload callback never fired")
	}
}

func TestWatcherKeepsConfigOnCorruptWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("battery_threshold: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(cfg)

	w, err := NewWatcher(zaptest.NewLogger(t), path, store, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 50 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("{broken: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	// Give the watcher time to (wrongly) apply it.
	time.Sleep(500 * time.Millisecond)
	if got := store.Get().BatteryThreshold; got != 42 {
		t.Errorf("corrupt write must keep the running config, threshold now %d", got)
	}
}

func TestWatcherCloseFromAnotherGoroutine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	store := NewStore(Default())

	w, err := NewWatcher(zaptest.NewLogger(t), path, store, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 50 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// A pending debounce must not keep the goroutine alive past Close.
	if err := os.WriteFile(path, []byte("battery_threshold: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Close from another goroutine never returned")
	}
}

func TestWatcherCloseBeforeStart(t *testing.T) {
	store := NewStore(Default())
	w, err := NewWatcher(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "c.yaml"), store, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close before Start: %v", err)
	}
}
