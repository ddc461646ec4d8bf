// Package sample reads the host conditions the automation policy runs
// on: battery charge level and the set of running process names.
// Sampling never fails a monitoring cycle: unavailable readings
// degrade to "no data" values instead of errors.
package sample

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Sample is an immutable snapshot of host conditions, taken once per
// poll cycle and discarded after policy evaluation.
type Sample struct {
	// Battery is the charge percentage, 0-100. Only meaningful when
	// BatteryOK is true.
	Battery int

	// BatteryOK is false on hosts without a battery or when the read
	// failed.
	BatteryOK bool

	// Processes holds the lowercased base executable names of all
	// running processes. Empty when enumeration was denied.
	Processes map[string]struct{}

	// Time is when the snapshot was taken.
	Time time.Time
}

// Running reports whether the named executable is in the snapshot.
// Matching is case-insensitive and exact on the base name.
func (s Sample) Running(name string) bool {
	_, ok := s.Processes[NormalizeName(name)]
	return ok
}

// AnyRunning reports whether any of the named executables is running.
func (s Sample) AnyRunning(names []string) bool {
	for _, n := range names {
		if s.Running(n) {
			return true
		}
	}
	return false
}

// Sampler takes condition snapshots.
type Sampler interface {
	// Sample never returns an error: battery read failures yield
	// BatteryOK=false and process enumeration failures yield an
	// empty process set.
	Sample(ctx context.Context) Sample
}

// NormalizeName reduces an executable name or path to the lowercased
// base name used for matching ("C:\Apps\Game.EXE" -> "game.exe").
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	// filepath.Base only splits on the host separator; names
	// configured with foreign-OS paths still need the last segment.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return ""
	}
	return filepath.Base(name)
}
