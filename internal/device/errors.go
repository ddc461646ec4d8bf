package device

import "errors"

// NetworkError marks a transient transport failure: the host is
// unreachable or the call timed out. Safe to retry on the next cycle.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError marks a malformed or unexpected device response,
// including a nonzero device error code. Also retried next cycle but
// surfaced distinctly for diagnostics.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Err.Error() }
func (e *ProtocolError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsProtocol reports whether err is (or wraps) a ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
