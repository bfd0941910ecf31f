package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"yieldcore/internal/model"
)

// Engine holds every numeric knob of the decision engine. Knobs are never
// hard-coded at computation sites; a copy of this struct travels into each
// engine constructor and can be overridden per call.
type Engine struct {
	TargetSellRatio     float64 `yaml:"target_sell_ratio"`
	VelocityWindowHours int     `yaml:"velocity_window_hours"`

	BrakeThreshold   float64 `yaml:"brake_threshold"`
	BrakeStrengthPct float64 `yaml:"brake_strength_pct"`
	MaxDiscountPct   float64 `yaml:"max_discount_pct"`
	MaxMarkupPct     float64 `yaml:"max_markup_pct"`

	Scenarios struct {
		Pessimistic float64 `yaml:"pessimistic"`
		Base        float64 `yaml:"base"`
		Optimistic  float64 `yaml:"optimistic"`
	} `yaml:"scenarios"`

	BundleVelocityBoost     float64 `yaml:"bundle_velocity_boost"`
	BundleDiscountRate      float64 `yaml:"bundle_discount_rate"`
	BundleGainThreshold     int64   `yaml:"bundle_gain_threshold"`
	CannibalizationBaseRate float64 `yaml:"cannibalization_base_rate"`

	DecaySteepness     float64 `yaml:"decay_k"`
	DecayCliffPosition float64 `yaml:"decay_p"`

	CostRatio          float64 `yaml:"cost_ratio"`
	CurrencyStep       int64   `yaml:"currency_step"`
	ForecastWindowDays int     `yaml:"forecast_window_days"`
	HorizonCapDays     int     `yaml:"horizon_cap_days"`
}

// ScenarioMultiplier maps a scenario to its demand multiplier.
func (e Engine) ScenarioMultiplier(s model.Scenario) float64 {
	switch s {
	case model.ScenarioPessimistic:
		return e.Scenarios.Pessimistic
	case model.ScenarioOptimistic:
		return e.Scenarios.Optimistic
	default:
		return e.Scenarios.Base
	}
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
		DecisionCron string `yaml:"decision_cron"`
	} `yaml:"schedule"`
	Session struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"session"`
	Engine Engine `yaml:"engine"`
}

// DefaultEngine returns the documented engine defaults.
func DefaultEngine() Engine {
	e := Engine{
		TargetSellRatio:         0.90,
		VelocityWindowHours:     24,
		BrakeThreshold:          1.5,
		BrakeStrengthPct:        0.05,
		MaxDiscountPct:          0.30,
		MaxMarkupPct:            0.50,
		BundleVelocityBoost:     1.5,
		BundleDiscountRate:      0.08,
		BundleGainThreshold:     5000,
		CannibalizationBaseRate: 0.15,
		DecaySteepness:          20,
		DecayCliffPosition:      0.12,
		CostRatio:               0.7,
		CurrencyStep:            100,
		ForecastWindowDays:      14,
		HorizonCapDays:          180,
	}
	e.Scenarios.Pessimistic = 0.7
	e.Scenarios.Base = 1.0
	e.Scenarios.Optimistic = 1.3
	return e
}

// Load reads config from a YAML file, then applies environment variable
// overrides and fills defaults. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Engine: DefaultEngine()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SNAPSHOT_CRON"); v != "" {
		cfg.Schedule.SnapshotCron = v
	}
	if v := os.Getenv("DECISION_CRON"); v != "" {
		cfg.Schedule.DecisionCron = v
	}
	if v := os.Getenv("BUNDLE_GAIN_THRESHOLD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Engine.BundleGainThreshold = n
		}
	}
	if v := os.Getenv("MAX_DISCOUNT_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.MaxDiscountPct = f
		}
	}
	if v := os.Getenv("MAX_MARKUP_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.MaxMarkupPct = f
		}
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/yieldcore.db"
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "0 0 * * * *"
	}
	if cfg.Schedule.DecisionCron == "" {
		cfg.Schedule.DecisionCron = "0 0 7 * * *"
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 15
	}
	applyEngineDefaults(&cfg.Engine)

	return cfg, nil
}

func applyEngineDefaults(e *Engine) {
	d := DefaultEngine()
	if e.TargetSellRatio == 0 {
		e.TargetSellRatio = d.TargetSellRatio
	}
	if e.VelocityWindowHours == 0 {
		e.VelocityWindowHours = d.VelocityWindowHours
	}
	if e.BrakeThreshold == 0 {
		e.BrakeThreshold = d.BrakeThreshold
	}
	if e.BrakeStrengthPct == 0 {
		e.BrakeStrengthPct = d.BrakeStrengthPct
	}
	if e.MaxDiscountPct == 0 {
		e.MaxDiscountPct = d.MaxDiscountPct
	}
	if e.MaxMarkupPct == 0 {
		e.MaxMarkupPct = d.MaxMarkupPct
	}
	if e.Scenarios.Pessimistic == 0 {
		e.Scenarios.Pessimistic = d.Scenarios.Pessimistic
	}
	if e.Scenarios.Base == 0 {
		e.Scenarios.Base = d.Scenarios.Base
	}
	if e.Scenarios.Optimistic == 0 {
		e.Scenarios.Optimistic = d.Scenarios.Optimistic
	}
	if e.BundleVelocityBoost == 0 {
		e.BundleVelocityBoost = d.BundleVelocityBoost
	}
	if e.BundleDiscountRate == 0 {
		e.BundleDiscountRate = d.BundleDiscountRate
	}
	if e.BundleGainThreshold == 0 {
		e.BundleGainThreshold = d.BundleGainThreshold
	}
	if e.CannibalizationBaseRate == 0 {
		e.CannibalizationBaseRate = d.CannibalizationBaseRate
	}
	if e.DecaySteepness == 0 {
		e.DecaySteepness = d.DecaySteepness
	}
	if e.DecayCliffPosition == 0 {
		e.DecayCliffPosition = d.DecayCliffPosition
	}
	if e.CostRatio == 0 {
		e.CostRatio = d.CostRatio
	}
	if e.CurrencyStep == 0 {
		e.CurrencyStep = d.CurrencyStep
	}
	if e.ForecastWindowDays == 0 {
		e.ForecastWindowDays = d.ForecastWindowDays
	}
	if e.HorizonCapDays == 0 {
		e.HorizonCapDays = d.HorizonCapDays
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	e := c.Engine
	if e.TargetSellRatio <= 0 || e.TargetSellRatio > 1 {
		return fmt.Errorf("engine.target_sell_ratio must be in (0, 1]")
	}
	if e.MaxDiscountPct < 0 || e.MaxDiscountPct >= 1 {
		return fmt.Errorf("engine.max_discount_pct must be in [0, 1)")
	}
	if e.MaxMarkupPct < 0 {
		return fmt.Errorf("engine.max_markup_pct must be >= 0")
	}
	if e.Scenarios.Pessimistic > e.Scenarios.Base || e.Scenarios.Base > e.Scenarios.Optimistic {
		return fmt.Errorf("engine.scenarios must be ordered pessimistic <= base <= optimistic")
	}
	if e.CurrencyStep <= 0 {
		return fmt.Errorf("engine.currency_step must be positive")
	}
	if e.VelocityWindowHours <= 0 {
		return fmt.Errorf("engine.velocity_window_hours must be positive")
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session.ttl_minutes must be positive")
	}
	return nil
}
