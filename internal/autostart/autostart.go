// Package autostart registers the daemon with the OS login-start
// mechanism. The real implementation uses XDG autostart entries on
// Linux and the registry Run key on Windows. The fake implementation
// allows testing without touching the OS.
package autostart

import "errors"

// ErrUnsupported is returned on platforms without an autostart
// mechanism.
var ErrUnsupported = errors.New("autostart: not supported on this platform")

// Registrar manages the OS autostart entry for the daemon.
type Registrar interface {
	// Enable registers the daemon to start at login. Idempotent.
	Enable() error

	// Disable removes the registration. Removing a missing entry is
	// not an error.
	Disable() error

	// Enabled reports whether the registration exists.
	Enabled() (bool, error)
}
