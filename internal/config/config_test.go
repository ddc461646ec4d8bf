package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	want := Default()
	if cfg.PlugAddr != want.PlugAddr || cfg.BatteryThreshold != want.BatteryThreshold {
		t.Errorf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadCorruptFileGivesDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("corrupt file should surface an error")
	}
	if cfg == nil {
		t.Fatal("corrupt file must still yield a config")
	}
	if cfg.BatteryThreshold != Default().BatteryThreshold {
		t.Errorf("corrupt file should fall back to defaults, got %+v", cfg)
	}
}

func TestLoadBackfillsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "plug_addr: 192.168.1.50\nbattery_threshold: 35\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlugAddr != "192.168.1.50" {
		t.Errorf("PlugAddr: got %q", cfg.PlugAddr)
	}
	if cfg.BatteryThreshold != 35 {
		t.Errorf("BatteryThreshold: got %d", cfg.BatteryThreshold)
	}
	// Keys absent from the file keep their defaults.
	if cfg.PollIntervalSeconds != Default().PollIntervalSeconds {
		t.Errorf("PollIntervalSeconds: got %d, want default %d",
			cfg.PollIntervalSeconds, Default().PollIntervalSeconds)
	}
	if len(cfg.Apps) != len(Default().Apps) {
		t.Errorf("Apps: got %v, want defaults", cfg.Apps)
	}
}

func TestLoadInvalidValuesGiveDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "plug_addr: 10.0.0.1\nbattery_threshold: 250\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("out-of-range threshold should surface an error")
	}
	if cfg.BatteryThreshold != Default().BatteryThreshold {
		t.Errorf("invalid file should fall back to defaults, got %d", cfg.BatteryThreshold)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty addr", func(c *Config) { c.PlugAddr = "" }, false},
		{"negative index", func(c *Config) { c.PlugIndex = -1 }, false},
		{"threshold 0", func(c *Config) { c.BatteryThreshold = 0 }, true},
		{"threshold 100", func(c *Config) { c.BatteryThreshold = 100 }, true},
		{"threshold 101", func(c *Config) { c.BatteryThreshold = 101 }, false},
		{"threshold -1", func(c *Config) { c.BatteryThreshold = -1 }, false},
		{"zero interval", func(c *Config) { c.PollIntervalSeconds = 0 }, false},
		{"empty apps ok", func(c *Config) { c.Apps = nil }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(cfg)
			err := cfg.Validate()
			if c.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !c.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.PlugAddr = "10.1.2.3"
	cfg.PlugIndex = 2
	cfg.Apps = []string{"steam.exe"}
	cfg.AutoStart = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got.PlugAddr != "10.1.2.3" || got.PlugIndex != 2 || !got.AutoStart {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Apps) != 1 || got.Apps[0] != "steam.exe" {
		t.Errorf("Apps round trip: %v", got.Apps)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.PollIntervalSeconds = -5
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), cfg); err == nil {
		t.Error("expected error saving invalid config")
	}
}

func TestPollInterval(t *testing.T) {
	cfg := Default()
	cfg.PollIntervalSeconds = 7
	if got := cfg.PollInterval(); got != 7*time.Second {
		t.Errorf("got %v, want 7s", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Default()
	cp := orig.Clone()
	cp.Apps[0] = "changed.exe"
	cp.BatteryThreshold = 99

	if orig.Apps[0] == "changed.exe" {
		t.Error("clone shares Apps backing array with original")
	}
	if orig.BatteryThreshold == 99 {
		t.Error("clone shares scalar state with original")
	}
}

func TestStoreSwap(t *testing.T) {
	st := NewStore(Default())

	next := Default()
	next.BatteryThreshold = 55
	st.Update(next)

	if got := st.Get().BatteryThreshold; got != 55 {
		t.Errorf("after update: got %d, want 55", got)
	}
}
