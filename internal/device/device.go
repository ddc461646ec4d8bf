// Package device defines the smart plug control boundary.
// The real implementation speaks the Kasa wire protocol (internal/kasa).
// The fake implementation allows testing without a plug on the network.
package device

import "context"

// PlugState represents the relay state of the plug.
type PlugState string

const (
	// StateUnknown is only valid before the first successful query or
	// after a failed one. It is never written to the device.
	StateUnknown PlugState = "UNKNOWN"
	StateOn      PlugState = "ON"
	StateOff     PlugState = "OFF"
)

// Opposite returns the inverted relay state. Unknown stays Unknown.
func (s PlugState) Opposite() PlugState {
	switch s {
	case StateOn:
		return StateOff
	case StateOff:
		return StateOn
	}
	return StateUnknown
}

// Controller controls a single smart plug endpoint.
// Calls do not retry internally; the caller owns the retry policy.
type Controller interface {
	// QueryState returns the current relay state.
	// Fails with a NetworkError on timeout/unreachable host and a
	// ProtocolError on a malformed or unexpected device response.
	QueryState(ctx context.Context) (PlugState, error)

	// SetState drives the relay to the desired state. Idempotent:
	// setting the same state twice is safe and has no side effect
	// beyond the second confirmation round-trip.
	SetState(ctx context.Context, desired PlugState) error

	// Close releases any pooled resources.
	Close() error
}
