package web

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/status"
)

// viewData is the combined daemon state handed to the renderers.
type viewData struct {
	Status    status.Status
	HasStatus bool
	Running   bool
	Config    *config.Config

	// MQTTConnected is nil when MQTT publishing is disabled.
	MQTTConnected *bool

	Start time.Time
	Now   time.Time
}

// Uptime returns how long the daemon has been up.
func (v viewData) Uptime() time.Duration {
	return v.Now.Sub(v.Start)
}

// RunningApps returns the monitored apps seen running in the last
// sample, sorted for stable output. The sample holds the whole host
// process table; only the configured apps belong in the view.
func (v viewData) RunningApps() []string {
	apps := make([]string, 0, len(v.Config.Apps))
	for _, name := range v.Config.Apps {
		if v.Status.Sample.Running(name) {
			apps = append(apps, name)
		}
	}
	sort.Strings(apps)
	return apps
}

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Plug           PlugJSON    `json:"plug"`
	BatteryPercent *int        `json:"battery_percent,omitempty"`
	RunningApps    []string    `json:"running_apps"`
	Monitoring     bool        `json:"monitoring"`
	LastCycle      string      `json:"last_cycle,omitempty"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
	StartTime      string      `json:"start_time"`
	Timestamp      string      `json:"timestamp"`
	MQTT           *MQTTStatus `json:"mqtt,omitempty"`
	Config         ConfigJSON  `json:"config"`
}

// PlugJSON is the JSON representation of the plug state.
type PlugJSON struct {
	Desired       string `json:"desired"`
	Actual        string `json:"actual"`
	Result        string `json:"result"`
	Error         string `json:"error,omitempty"`
	FailureStreak int    `json:"failure_streak,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of the daemon config. It is
// also the request body for PUT /api/config; absent fields keep their
// current values.
type ConfigJSON struct {
	PlugAddr            *string   `json:"plug_addr,omitempty"`
	PlugIndex           *int      `json:"plug_index,omitempty"`
	BatteryThreshold    *int      `json:"battery_threshold,omitempty"`
	Apps                *[]string `json:"apps,omitempty"`
	PollIntervalSeconds *int      `json:"poll_interval_seconds,omitempty"`
	AutoStart           *bool     `json:"autostart,omitempty"`
	HTTPAddr            *string   `json:"http_addr,omitempty"`
}

// toConfig applies the non-nil fields on top of a clone of base.
func (cj ConfigJSON) toConfig(base *config.Config) *config.Config {
	cfg := base.Clone()
	if cj.PlugAddr != nil {
		cfg.PlugAddr = *cj.PlugAddr
	}
	if cj.PlugIndex != nil {
		cfg.PlugIndex = *cj.PlugIndex
	}
	if cj.BatteryThreshold != nil {
		cfg.BatteryThreshold = *cj.BatteryThreshold
	}
	if cj.Apps != nil {
		cfg.Apps = append([]string(nil), (*cj.Apps)...)
	}
	if cj.PollIntervalSeconds != nil {
		cfg.PollIntervalSeconds = *cj.PollIntervalSeconds
	}
	if cj.AutoStart != nil {
		cfg.AutoStart = *cj.AutoStart
	}
	if cj.HTTPAddr != nil {
		cfg.HTTPAddr = *cj.HTTPAddr
	}
	return cfg
}

func configToJSON(cfg *config.Config) ConfigJSON {
	apps := append([]string(nil), cfg.Apps...)
	return ConfigJSON{
		PlugAddr:            &cfg.PlugAddr,
		PlugIndex:           &cfg.PlugIndex,
		BatteryThreshold:    &cfg.BatteryThreshold,
		Apps:                &apps,
		PollIntervalSeconds: &cfg.PollIntervalSeconds,
		AutoStart:           &cfg.AutoStart,
		HTTPAddr:            &cfg.HTTPAddr,
	}
}

func stateOrUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func formatJSON(v viewData) []byte {
	sj := StatusJSON{
		Status: StatusInner{
			Plug: PlugJSON{
				Desired:       stateOrUnknown(string(v.Status.Desired)),
				Actual:        stateOrUnknown(string(v.Status.Actual)),
				Result:        string(v.Status.Result),
				Error:         v.Status.Err,
				FailureStreak: v.Status.Streak,
			},
			RunningApps:   v.RunningApps(),
			Monitoring:    v.Running,
			UptimeSeconds: int64(v.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     v.Start.UTC().Format(time.RFC3339),
			Timestamp:     v.Now.UTC().Format(time.RFC3339),
			Config:        configToJSON(v.Config),
		},
	}

	if v.HasStatus {
		sj.Status.LastCycle = v.Status.Time.UTC().Format(time.RFC3339)
		if v.Status.Sample.BatteryOK {
			b := v.Status.Sample.Battery
			sj.Status.BatteryPercent = &b
		}
	}

	if v.MQTTConnected != nil {
		sj.Status.MQTT = &MQTTStatus{
			Connected: *v.MQTTConnected,
			Broker:    v.Config.MQTT.Broker,
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}

func formatConfigJSON(cfg *config.Config) []byte {
	data, _ := json.MarshalIndent(configToJSON(cfg), "", "  ")
	return data
}
