// Package policy contains the pure decision logic mapping host
// conditions to a desired plug state. No I/O, no clocks, no globals,
// every input arrives as a parameter, so the function is independently
// testable without network or OS access.
package policy

import (
	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/sample"
)

// Input carries everything Decide needs for one evaluation.
type Input struct {
	// Sample is the condition snapshot for this cycle.
	Sample sample.Sample

	// Threshold is the battery percentage at or below which the plug
	// must be on, 0-100.
	Threshold int

	// Monitored is the configured set of executable names whose
	// presence holds the plug off while the battery is healthy. May
	// be empty.
	Monitored []string

	// Previous is the desired state of the last evaluation, used only
	// when no condition is decidable. Unknown on the first cycle.
	Previous device.PlugState
}

// Decide maps conditions to the desired plug state. The intent is
// "keep the plug on unless a monitored app is running and the battery
// is healthy". Truth table:
//
//	battery    vs threshold   monitored running   -> desired
//	available  at/below       (any)                  ON     battery dominates; tie triggers
//	available  above          yes                    OFF
//	available  above          no                     ON
//	missing    -              yes                    OFF    process-only fallback
//	missing    -              no                     ON
//	missing    -              none configured        Previous  no oscillation on missing data
//
// Deterministic and total: every input yields a state, the same state
// every time.
func Decide(in Input) device.PlugState {
	if in.Sample.BatteryOK && in.Sample.Battery <= in.Threshold {
		return device.StateOn
	}
	if !in.Sample.BatteryOK && len(in.Monitored) == 0 {
		return in.Previous
	}
	if in.Sample.AnyRunning(in.Monitored) {
		return device.StateOff
	}
	return device.StateOn
}
