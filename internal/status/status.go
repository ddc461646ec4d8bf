// Package status provides the latest-value hand-off between the
// monitor loop and presentation consumers (HTTP, MQTT, CLI). Only the
// most recent status matters; there is no backlog and no guaranteed
// delivery of intermediate values.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/sample"
)

// Result classifies the outcome of one monitor cycle or manual action.
type Result string

const (
	ResultOK           Result = "ok"
	ResultNetworkError Result = "network_error"
	ResultDeviceError  Result = "device_error"
)

// Status is a point-in-time record of the automation state, published
// once per cycle and after manual actions. It is a value type, safe
// to hold after publishing.
type Status struct {
	// Sample is the condition snapshot the cycle ran on. Zero for
	// manual actions.
	Sample sample.Sample

	// Desired is the policy output; Actual is the last queried device
	// state. Unknown when the query failed.
	Desired device.PlugState
	Actual  device.PlugState

	// Result is the cycle outcome; Err carries failure detail.
	Result Result
	Err    string

	// Streak counts consecutive failed cycles. Reset on success.
	Streak int

	// Running reports whether the monitor loop is active.
	Running bool

	// Message is an optional human-readable note ("manual toggle",
	// "monitor already running").
	Message string

	// Time is when the status was produced.
	Time time.Time
}

// Channel is a single-slot latest-value publish/subscribe hand-off.
// Publish overwrites any unread value; Peek never blocks.
type Channel struct {
	mu      sync.Mutex
	latest  Status
	valid   bool
	changes chan struct{}
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{changes: make(chan struct{}, 1)}
}

// Publish stores s as the latest status, overwriting any previous
// value, and signals waiting subscribers. Never blocks.
func (c *Channel) Publish(s Status) {
	c.mu.Lock()
	c.latest = s
	c.valid = true
	c.mu.Unlock()

	// Coalescing signal: one pending notification is enough, the
	// subscriber reads the latest value anyway.
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Peek returns the most recent status without blocking. ok is false
// until the first Publish.
func (c *Channel) Peek() (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.valid
}

// Changes returns a channel that receives a signal after publishes.
// Signals coalesce; after receiving one, read the current value with
// Peek.
func (c *Channel) Changes() <-chan struct{} {
	return c.changes
}
