package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 8080 || cfg.Mode != "release" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.CatchUp || cfg.Backpressure != "kick" {
		t.Fatalf("unexpected relay defaults: %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.PongWait != 60*time.Second {
		t.Fatalf("unexpected keepalive defaults: %v %v", cfg.PingPeriod, cfg.PongWait)
	}
	if cfg.CursorRate.Limit != 60 || cfg.CursorRate.Interval != time.Second {
		t.Fatalf("unexpected cursor rate: %+v", cfg.CursorRate)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	body := []byte("port: 9090\ncatch_up: false\nbackpressure: drop\ncursor_rate:\n  limit: 5\nmdns:\n  enabled: true\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SKETCH_PORT", "7070")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("env override ignored: port %d", cfg.Port)
	}
	if cfg.CatchUp || cfg.Backpressure != "drop" || cfg.CursorRate.Limit != 5 || !cfg.MDNS.Enabled {
		t.Fatalf("file values ignored: %+v", cfg)
	}
	if cfg.CursorRate.Interval != time.Second {
		t.Fatalf("nested default lost: %v", cfg.CursorRate.Interval)
	}
}

func TestLoadFileRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backpressure: block\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
