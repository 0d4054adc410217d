package config

import "testing"

func TestDefaultsAreSane(t *testing.T) {
	cfg := Defaults()
	if cfg.BoardFile == "" {
		t.Error("expected a default board file path")
	}
	if cfg.WatchTimeoutSec <= 0 {
		t.Error("expected a positive default watch timeout")
	}
	if len(cfg.BotProfiles) == 0 {
		t.Error("expected at least one default bot profile")
	}
}

func TestOverrideIntAppliesValidValue(t *testing.T) {
	t.Setenv("WATCH_TIMEOUT_SEC", "45")
	cfg := Load()
	if cfg.WatchTimeoutSec != 45 {
		t.Errorf("expected override to apply, got %d", cfg.WatchTimeoutSec)
	}
}

func TestOverrideIntIgnoresInvalidValue(t *testing.T) {
	t.Setenv("WATCH_TIMEOUT_SEC", "not-a-number")
	cfg := Load()
	if cfg.WatchTimeoutSec != Defaults().WatchTimeoutSec {
		t.Errorf("expected default to survive invalid override, got %d", cfg.WatchTimeoutSec)
	}
}

func TestOverrideBool(t *testing.T) {
	t.Setenv("SIM_ENABLED", "true")
	cfg := Load()
	if !cfg.SimEnabled {
		t.Error("expected SimEnabled=true after override")
	}
}

func TestOverrideString(t *testing.T) {
	t.Setenv("BOARD_FILE", "custom.txt")
	cfg := Load()
	if cfg.BoardFile != "custom.txt" {
		t.Errorf("expected override, got %q", cfg.BoardFile)
	}
}
