package sample

import (
	"context"
	"math"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// SystemSampler reads real host state: battery via the platform power
// API and processes via the process table.
type SystemSampler struct {
	log *zap.Logger
}

// NewSystemSampler creates a sampler logging degraded reads to log.
func NewSystemSampler(log *zap.Logger) *SystemSampler {
	return &SystemSampler{log: log}
}

// Sample takes a snapshot of battery and process state. Partial
// failures degrade: a missing battery or a denied process table never
// abort the snapshot.
func (s *SystemSampler) Sample(ctx context.Context) Sample {
	out := Sample{
		Processes: map[string]struct{}{},
		Time:      time.Now(),
	}

	if pct, ok := readBattery(s.log); ok {
		out.Battery = pct
		out.BatteryOK = true
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		s.log.Debug("process enumeration unavailable", zap.Error(err))
		return out
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			// Processes exit between listing and inspection; skip.
			continue
		}
		out.Processes[NormalizeName(name)] = struct{}{}
	}
	return out
}

// readBattery aggregates charge across all batteries into a single
// percentage. Returns ok=false on hosts without a usable battery.
func readBattery(log *zap.Logger) (int, bool) {
	bats, err := battery.GetAll()
	if err != nil && len(bats) == 0 {
		log.Debug("battery unavailable", zap.Error(err))
		return 0, false
	}

	var current, full float64
	for _, b := range bats {
		if b == nil || b.Full <= 0 {
			continue
		}
		current += b.Current
		full += b.Full
	}
	if full <= 0 {
		return 0, false
	}
	return clampPercent(math.Round(current / full * 100)), true
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
