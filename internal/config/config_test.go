package config

import (
	"os"
	"path/filepath"
	"testing"

	"yieldcore/internal/model"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.TargetSellRatio != 0.90 {
		t.Errorf("expected default sell ratio 0.90, got %.2f", cfg.Engine.TargetSellRatio)
	}
	if cfg.Engine.BundleGainThreshold != 5000 {
		t.Errorf("expected default gain threshold 5000, got %d", cfg.Engine.BundleGainThreshold)
	}
	if cfg.Schedule.SnapshotCron == "" || cfg.Schedule.DecisionCron == "" {
		t.Error("expected default cron expressions")
	}
	if cfg.Session.TTLMinutes != 15 {
		t.Errorf("expected default session TTL 15, got %d", cfg.Session.TTLMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  sqlite_path: /tmp/engine.db
engine:
  max_discount_pct: 0.2
  scenarios:
    pessimistic: 0.5
    base: 1.0
    optimistic: 1.5
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.SQLitePath != "/tmp/engine.db" {
		t.Errorf("file value lost: %s", cfg.Database.SQLitePath)
	}
	if cfg.Engine.MaxDiscountPct != 0.2 {
		t.Errorf("expected max discount 0.2, got %.2f", cfg.Engine.MaxDiscountPct)
	}
	// Unset knobs still get defaults.
	if cfg.Engine.BrakeThreshold != 1.5 {
		t.Errorf("expected default brake threshold, got %.2f", cfg.Engine.BrakeThreshold)
	}
	if got := cfg.Engine.ScenarioMultiplier(model.ScenarioOptimistic); got != 1.5 {
		t.Errorf("expected optimistic multiplier 1.5, got %.2f", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  sqlite_path: /tmp/file.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SQLITE_PATH", "/tmp/env.db")
	t.Setenv("BUNDLE_GAIN_THRESHOLD", "12000")
	t.Setenv("MAX_MARKUP_PCT", "0.8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.SQLitePath != "/tmp/env.db" {
		t.Errorf("env must beat file, got %s", cfg.Database.SQLitePath)
	}
	if cfg.Engine.BundleGainThreshold != 12000 {
		t.Errorf("expected gain threshold 12000, got %d", cfg.Engine.BundleGainThreshold)
	}
	if cfg.Engine.MaxMarkupPct != 0.8 {
		t.Errorf("expected max markup 0.8, got %.2f", cfg.Engine.MaxMarkupPct)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sell ratio above 1", func(c *Config) { c.Engine.TargetSellRatio = 1.2 }},
		{"discount at 100%", func(c *Config) { c.Engine.MaxDiscountPct = 1.0 }},
		{"negative markup", func(c *Config) { c.Engine.MaxMarkupPct = -0.1 }},
		{"scenarios out of order", func(c *Config) { c.Engine.Scenarios.Pessimistic = 2.0 }},
		{"zero currency step", func(c *Config) { c.Engine.CurrencyStep = -100 }},
		{"zero session ttl", func(c *Config) { c.Session.TTLMinutes = -1 }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("%s: load: %v", tt.name, err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation to fail", tt.name)
		}
	}
}

func TestScenarioMultiplier_Defaults(t *testing.T) {
	e := DefaultEngine()
	tests := []struct {
		scenario model.Scenario
		want     float64
	}{
		{model.ScenarioPessimistic, 0.7},
		{model.ScenarioBase, 1.0},
		{model.ScenarioOptimistic, 1.3},
		{model.Scenario("unknown"), 1.0},
	}
	for _, tt := range tests {
		if got := e.ScenarioMultiplier(tt.scenario); got != tt.want {
			t.Errorf("%s: expected %.1f, got %.1f", tt.scenario, tt.want, got)
		}
	}
}
