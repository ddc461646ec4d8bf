//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

const desktopName = "plugwatch.desktop"

// xdgRegistrar manages an XDG autostart desktop entry under
// ~/.config/autostart.
type xdgRegistrar struct {
	dir  string
	exec string
}

// New creates a Registrar for the current executable.
func New() (Registrar, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return newXDG(filepath.Join(cfgDir, "autostart"), exe), nil
}

// newXDG creates a registrar rooted at dir. Split out so tests can
// point it at a temp directory.
func newXDG(dir, exec string) *xdgRegistrar {
	return &xdgRegistrar{dir: dir, exec: exec}
}

func (r *xdgRegistrar) path() string {
	return filepath.Join(r.dir, desktopName)
}

func (r *xdgRegistrar) Enable() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=plugwatch
Comment=Smart plug charging automation
Exec=%s run
X-GNOME-Autostart-enabled=true
`, r.exec)
	if err := os.WriteFile(r.path(), []byte(entry), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

func (r *xdgRegistrar) Disable() error {
	err := os.Remove(r.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}

func (r *xdgRegistrar) Enabled() (bool, error) {
	_, err := os.Stat(r.path())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
