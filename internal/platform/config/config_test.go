package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"focuspulse/internal/platform/config"
)

func TestNewRequiresDataDirAndDerivesPaths(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
	cfg, err := config.New("/data")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/data", ".focuspulse", "focuspulse.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Session.DefaultDurationMinutes != 25 || cfg.Scoring.DistractionPenalty != 5 {
		t.Fatalf("unexpected defaults %+v", cfg.Settings)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "session:\n  default_duration_minutes: 50\nscoring:\n  idle_penalty_per_minute: 3.5\nnotes:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(dir, "focuspulse.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session.DefaultDurationMinutes != 50 {
		t.Fatalf("expected duration 50, got %d", cfg.Session.DefaultDurationMinutes)
	}
	if cfg.Session.DefaultIdleThresholdSeconds != 60 {
		t.Fatalf("expected default idle threshold, got %d", cfg.Session.DefaultIdleThresholdSeconds)
	}
	if cfg.Scoring.IdlePenaltyPerMinute != 3.5 || !cfg.Notes.Enabled {
		t.Fatalf("unexpected settings %+v", cfg.Settings)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "scoring:\n  distraction_penalty: -1\n"
	if err := os.WriteFile(filepath.Join(dir, "focuspulse.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(dir); err == nil {
		t.Fatalf("expected negative penalty to be rejected")
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOCUSPULSE_SERVER_ADDR", "127.0.0.1:9999")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected env override, got %s", cfg.Server.Addr)
	}
}
