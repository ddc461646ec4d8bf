package policy

import (
	"testing"

	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/sample"
)

func TestDecideTruthTable(t *testing.T) {
	game := []string{"game.exe"}

	cases := []struct {
		name      string
		smp       sample.Sample
		threshold int
		monitored []string
		previous  device.PlugState
		want      device.PlugState
	}{
		{
			name:      "healthy battery, nothing running",
			smp:       sample.Snap(30, true),
			threshold: 20,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "healthy battery, monitored app running",
			smp:       sample.Snap(30, true, "game.exe"),
			threshold: 20,
			monitored: game,
			want:      device.StateOff,
		},
		{
			name:      "low battery dominates running app",
			smp:       sample.Snap(10, true, "game.exe"),
			threshold: 20,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "battery exactly at threshold triggers",
			smp:       sample.Snap(20, true, "game.exe"),
			threshold: 20,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "battery unavailable, no monitored apps, preserves ON",
			smp:       sample.Snap(0, false),
			threshold: 20,
			monitored: nil,
			previous:  device.StateOn,
			want:      device.StateOn,
		},
		{
			name:      "battery unavailable, no monitored apps, preserves OFF",
			smp:       sample.Snap(0, false),
			threshold: 20,
			monitored: nil,
			previous:  device.StateOff,
			want:      device.StateOff,
		},
		{
			name:      "battery unavailable falls back to process-only, app running",
			smp:       sample.Snap(0, false, "game.exe"),
			threshold: 20,
			monitored: game,
			want:      device.StateOff,
		},
		{
			name:      "battery unavailable falls back to process-only, nothing running",
			smp:       sample.Snap(0, false),
			threshold: 20,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "no monitored apps, healthy battery stays ON",
			smp:       sample.Snap(90, true, "anything.exe"),
			threshold: 20,
			monitored: nil,
			want:      device.StateOn,
		},
		{
			name:      "threshold 100 always ON",
			smp:       sample.Snap(100, true, "game.exe"),
			threshold: 100,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "threshold 0 only triggers at empty battery",
			smp:       sample.Snap(0, true, "game.exe"),
			threshold: 0,
			monitored: game,
			want:      device.StateOn,
		},
		{
			name:      "matching is case-insensitive",
			smp:       sample.Snap(50, true, "Game.EXE"),
			threshold: 20,
			monitored: game,
			want:      device.StateOff,
		},
		{
			name:      "unknown previous with no data stays unknown",
			smp:       sample.Snap(0, false),
			threshold: 20,
			monitored: nil,
			previous:  device.StateUnknown,
			want:      device.StateUnknown,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Decide(Input{
				Sample:    c.smp,
				Threshold: c.threshold,
				Monitored: c.monitored,
				Previous:  c.previous,
			})
			if got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	in := Input{
		Sample:    sample.Snap(42, true, "chrome.exe"),
		Threshold: 20,
		Monitored: []string{"chrome.exe", "notepad.exe"},
		Previous:  device.StateOff,
	}

	first := Decide(in)
	for i := 0; i < 100; i++ {
		if got := Decide(in); got != first {
			t.Fatalf("call %d: got %s, first call gave %s", i, got, first)
		}
	}
}
