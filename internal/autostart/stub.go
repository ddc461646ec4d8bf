//go:build !linux && !windows

package autostart

// New returns ErrUnsupported on platforms without an autostart
// mechanism.
func New() (Registrar, error) {
	return nil, ErrUnsupported
}
