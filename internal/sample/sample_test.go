package sample

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"chrome.exe", "chrome.exe"},
		{"Chrome.EXE", "chrome.exe"},
		{"  Notepad.exe ", "notepad.exe"},
		{"/usr/bin/firefox", "firefox"},
		{`C:\Program Files\Game\Game.exe`, "game.exe"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSampleRunningIsCaseInsensitive(t *testing.T) {
	s := Snap(50, true, "Game.exe", "/usr/bin/steam")

	if !s.Running("GAME.EXE") {
		t.Error("expected GAME.EXE to match game.exe")
	}
	if !s.Running("steam") {
		t.Error("expected steam to match")
	}
	if s.Running("chrome.exe") {
		t.Error("chrome.exe should not match")
	}
}

func TestAnyRunning(t *testing.T) {
	s := Snap(50, true, "notepad.exe")

	if !s.AnyRunning([]string{"chrome.exe", "Notepad.exe"}) {
		t.Error("expected a match via notepad.exe")
	}
	if s.AnyRunning([]string{"chrome.exe"}) {
		t.Error("expected no match")
	}
	if s.AnyRunning(nil) {
		t.Error("empty monitored set must never match")
	}
}

func TestFakeSamplerScript(t *testing.T) {
	f := NewFakeSampler(
		Snap(80, true),
		Snap(10, true, "game.exe"),
	)
	ctx := context.Background()

	if got := f.Sample(ctx); got.Battery != 80 {
		t.Errorf("first sample battery: got %d, want 80", got.Battery)
	}
	if got := f.Sample(ctx); got.Battery != 10 || !got.Running("game.exe") {
		t.Errorf("second sample mismatch: %+v", got)
	}
	// Exhausted: last repeats.
	if got := f.Sample(ctx); got.Battery != 10 {
		t.Errorf("repeat sample battery: got %d, want 10", got.Battery)
	}
	if f.Calls != 3 {
		t.Errorf("calls: got %d, want 3", f.Calls)
	}
}

func TestSystemSamplerNeverPanics(t *testing.T) {
	// Whatever the host looks like, sampling must degrade, not fail.
	s := NewSystemSampler(zaptest.NewLogger(t))
	got := s.Sample(context.Background())
	if got.Processes == nil {
		t.Error("Processes must never be nil")
	}
	if got.BatteryOK && (got.Battery < 0 || got.Battery > 100) {
		t.Errorf("battery percent out of range: %d", got.Battery)
	}
}

func TestClampPercent(t *testing.T) {
	if clampPercent(-1) != 0 {
		t.Error("negative should clamp to 0")
	}
	if clampPercent(101) != 100 {
		t.Error("over 100 should clamp to 100")
	}
	if clampPercent(42) != 42 {
		t.Error("in-range value changed")
	}
}
