// Package mqtt publishes plug automation status to an MQTT broker for
// home-automation consumers, with abstraction for testing. Publishing
// is optional and best-effort: failures never disturb the monitor
// loop.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plugwatch/internal/status"
)

// TopicStatus carries the latest automation status, retained so new
// subscribers see the current state immediately.
const TopicStatus = "energy/plugwatch/status"

// TopicSystem carries daemon lifecycle events.
const TopicSystem = "energy/plugwatch/system"

// Publisher publishes status and lifecycle events.
type Publisher interface {
	// PublishStatus sends the latest automation status.
	PublishStatus(st status.Status) error

	// PublishSystem sends a lifecycle event (STARTUP, SHUTDOWN).
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Retained  bool
}

// statusPayload is the wire form of a status message.
type statusPayload struct {
	Plug plugPayload `json:"plug"`
}

type plugPayload struct {
	Timestamp  string `json:"timestamp"`
	Desired    string `json:"desired"`
	Actual     string `json:"actual"`
	Result     string `json:"result"`
	Error      string `json:"error,omitempty"`
	Streak     int    `json:"failure_streak,omitempty"`
	Monitoring bool   `json:"monitoring"`
	Battery    *int   `json:"battery_percent,omitempty"`
	Message    string `json:"message,omitempty"`
}

// FormatStatusPayload creates the JSON payload for a status message.
func FormatStatusPayload(st status.Status) ([]byte, error) {
	p := statusPayload{
		Plug: plugPayload{
			Timestamp:  st.Time.UTC().Format(time.RFC3339),
			Desired:    string(st.Desired),
			Actual:     string(st.Actual),
			Result:     string(st.Result),
			Error:      st.Err,
			Streak:     st.Streak,
			Monitoring: st.Running,
			Message:    st.Message,
		},
	}
	if st.Sample.BatteryOK {
		b := st.Sample.Battery
		p.Plug.Battery = &b
	}
	return json.Marshal(p)
}

// systemPayload is the wire form of a lifecycle message.
type systemPayload struct {
	System systemPayloadInner `json:"system"`
}

type systemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	return json.Marshal(systemPayload{
		System: systemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
