package sample

import "context"

// FakeSampler is a test double returning scripted samples.
type FakeSampler struct {
	// Samples are returned in order, one per call. When exhausted,
	// the last sample repeats.
	Samples []Sample

	index int

	// Calls counts Sample invocations.
	Calls int
}

// NewFakeSampler creates a FakeSampler with the given samples.
func NewFakeSampler(samples ...Sample) *FakeSampler {
	return &FakeSampler{Samples: samples}
}

// Sample returns the next scripted sample.
func (f *FakeSampler) Sample(ctx context.Context) Sample {
	f.Calls++
	if len(f.Samples) == 0 {
		return Sample{Processes: map[string]struct{}{}}
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s
}

// Reset rewinds the script.
func (f *FakeSampler) Reset() {
	f.index = 0
	f.Calls = 0
}

// Snap builds a Sample for tests. Process names are normalized the
// same way the real sampler does.
func Snap(batteryPct int, batteryOK bool, running ...string) Sample {
	procs := make(map[string]struct{}, len(running))
	for _, r := range running {
		procs[NormalizeName(r)] = struct{}{}
	}
	return Sample{Battery: batteryPct, BatteryOK: batteryOK, Processes: procs}
}
