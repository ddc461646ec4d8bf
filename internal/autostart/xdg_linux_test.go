//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableWritesDesktopEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	r := newXDG(dir, "/usr/local/bin/plugwatch")

	if err := r.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, desktopName))
	if err != nil {
		t.Fatalf("read desktop entry: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "[Desktop Entry]") {
		t.Error("missing [Desktop Entry] header")
	}
	if !strings.Contains(content, "Exec=/usr/local/bin/plugwatch run") {
		t.Errorf("missing Exec line, got:\n%s", content)
	}

	enabled, err := r.Enabled()
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	if !enabled {
		t.Error("expected Enabled=true after Enable")
	}
}

func TestEnableIdempotent(t *testing.T) {
	r := newXDG(t.TempDir(), "/usr/bin/plugwatch")

	if err := r.Enable(); err != nil {
		t.Fatalf("first Enable: %v", err)
	}
	if err := r.Enable(); err != nil {
		t.Fatalf("second Enable: %v", err)
	}
}

func TestDisableRemovesEntry(t *testing.T) {
	r := newXDG(t.TempDir(), "/usr/bin/plugwatch")

	if err := r.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if err := r.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	enabled, err := r.Enabled()
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	if enabled {
		t.Error("expected Enabled=false after Disable")
	}
}

func TestDisableMissingEntryIsNotAnError(t *testing.T) {
	r := newXDG(t.TempDir(), "/usr/bin/plugwatch")

	if err := r.Disable(); err != nil {
		t.Errorf("Disable on missing entry: %v", err)
	}
}

func TestEnabledFalseBeforeEnable(t *testing.T) {
	r := newXDG(t.TempDir(), "/usr/bin/plugwatch")

	enabled, err := r.Enabled()
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	if enabled {
		t.Error("expected Enabled=false before Enable")
	}
}
