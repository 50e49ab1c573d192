// Package config loads and validates the engine configuration from a
// YAML or JSON file, with optional environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fundsim/leverage"
	"github.com/rustyeddy/fundsim/risk"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Leverage LeverageConfig `json:"leverage" yaml:"leverage"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

type AccountConfig struct {
	StartingCapital float64 `json:"starting_capital" yaml:"starting_capital"`
	DefaultSize     float64 `json:"default_size" yaml:"default_size"`
	TakerFeeRate    float64 `json:"taker_fee_rate" yaml:"taker_fee_rate"`
}

type RiskConfig struct {
	MaxPositionPct       float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MaxOpenPositions     int     `json:"max_open_positions" yaml:"max_open_positions"`
	MaxExposurePct       float64 `json:"max_exposure_pct" yaml:"max_exposure_pct"`
	StopLossPct          float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxLeverage          float64 `json:"max_leverage" yaml:"max_leverage"`
	ConsecutiveLossLimit int     `json:"consecutive_loss_limit" yaml:"consecutive_loss_limit"`
	CooldownDays         float64 `json:"cooldown_days" yaml:"cooldown_days"`
}

type LeverageConfig struct {
	Strategy string  `json:"strategy" yaml:"strategy"`
	Fixed    float64 `json:"fixed" yaml:"fixed"`
	Max      float64 `json:"max" yaml:"max"`
}

type EngineConfig struct {
	TickInterval     string `json:"tick_interval" yaml:"tick_interval"` // e.g. "1h", "15m"
	MaxParallelFetch int    `json:"max_parallel_fetch" yaml:"max_parallel_fetch"`
}

// ParseTickInterval converts the tick interval to a time.Duration.
func (e EngineConfig) ParseTickInterval() (time.Duration, error) {
	if e.TickInterval == "" {
		return time.Hour, nil
	}
	return time.ParseDuration(e.TickInterval)
}

type StorageConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingCapital: 10000,
			DefaultSize:     500,
			TakerFeeRate:    0.001,
		},
		Risk: RiskConfig{
			MaxPositionPct:       0.10,
			MaxOpenPositions:     3,
			MaxExposurePct:       1.5,
			StopLossPct:          -0.05,
			MaxDrawdownPct:       -0.15,
			MaxLeverage:          6,
			ConsecutiveLossLimit: 3,
			CooldownDays:         2,
		},
		Leverage: LeverageConfig{
			Strategy: string(leverage.SignalStrength),
			Fixed:    2,
			Max:      6,
		},
		Engine: EngineConfig{
			TickInterval:     "1h",
			MaxParallelFetch: 4,
		},
		Storage: StorageConfig{Dir: "./data"},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./fundsim.sqlite",
		},
	}
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnv builds a configuration from defaults plus environment
// variables, reading a .env file first if one exists.
func LoadEnv() (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envFloat("FUNDSIM_STARTING_CAPITAL", &c.Account.StartingCapital)
	envFloat("FUNDSIM_DEFAULT_SIZE", &c.Account.DefaultSize)
	envFloat("FUNDSIM_TAKER_FEE_RATE", &c.Account.TakerFeeRate)

	envFloat("FUNDSIM_MAX_POSITION_PCT", &c.Risk.MaxPositionPct)
	envInt("FUNDSIM_MAX_OPEN_POSITIONS", &c.Risk.MaxOpenPositions)
	envFloat("FUNDSIM_MAX_EXPOSURE_PCT", &c.Risk.MaxExposurePct)
	envFloat("FUNDSIM_STOP_LOSS_PCT", &c.Risk.StopLossPct)
	envFloat("FUNDSIM_MAX_DRAWDOWN_PCT", &c.Risk.MaxDrawdownPct)
	envFloat("FUNDSIM_MAX_LEVERAGE", &c.Risk.MaxLeverage)
	envInt("FUNDSIM_CONSECUTIVE_LOSS_LIMIT", &c.Risk.ConsecutiveLossLimit)
	envFloat("FUNDSIM_COOLDOWN_DAYS", &c.Risk.CooldownDays)

	envString("FUNDSIM_LEVERAGE_STRATEGY", &c.Leverage.Strategy)
	envFloat("FUNDSIM_LEVERAGE_FIXED", &c.Leverage.Fixed)
	envFloat("FUNDSIM_LEVERAGE_MAX", &c.Leverage.Max)

	envString("FUNDSIM_TICK_INTERVAL", &c.Engine.TickInterval)
	envString("FUNDSIM_DATA_DIR", &c.Storage.Dir)
	envString("FUNDSIM_JOURNAL_TYPE", &c.Journal.Type)
	envString("FUNDSIM_JOURNAL_DB", &c.Journal.DBPath)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the whole configuration and reports every problem,
// not just the first one.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Account.StartingCapital <= 0 {
		add("account.starting_capital must be positive")
	}
	if c.Account.DefaultSize <= 0 {
		add("account.default_size must be positive")
	}
	if c.Account.TakerFeeRate < 0 || c.Account.TakerFeeRate > 0.1 {
		add("account.taker_fee_rate must be in [0, 0.1]")
	}

	if c.Risk.MaxPositionPct <= 0 || c.Risk.MaxPositionPct > 1 {
		add("risk.max_position_pct must be in (0, 1]")
	}
	if c.Risk.MaxOpenPositions <= 0 {
		add("risk.max_open_positions must be positive")
	}
	if c.Risk.MaxExposurePct <= 0 {
		add("risk.max_exposure_pct must be positive")
	}
	if c.Risk.StopLossPct >= 0 {
		add("risk.stop_loss_pct must be negative")
	}
	if c.Risk.MaxDrawdownPct >= 0 {
		add("risk.max_drawdown_pct must be negative")
	}
	if c.Risk.MaxLeverage < 1 {
		add("risk.max_leverage must be at least 1")
	}
	if c.Risk.ConsecutiveLossLimit < 0 {
		add("risk.consecutive_loss_limit must not be negative")
	}
	if c.Risk.CooldownDays < 0 {
		add("risk.cooldown_days must not be negative")
	}

	switch leverage.Strategy(c.Leverage.Strategy) {
	case leverage.Fixed, leverage.SignalStrength, leverage.ProfitStack, leverage.Combined:
	default:
		add("leverage.strategy must be one of fixed, signal_strength, profit_stack, combined")
	}
	if c.Leverage.Max < 1 {
		add("leverage.max must be at least 1")
	}
	if leverage.Strategy(c.Leverage.Strategy) == leverage.Fixed && c.Leverage.Fixed < 1 {
		add("leverage.fixed must be at least 1")
	}

	if _, err := c.Engine.ParseTickInterval(); err != nil {
		add("engine.tick_interval: %v", err)
	}
	if c.Storage.Dir == "" {
		add("storage.dir is required")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			add("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			add("journal.trades_file and equity_file required for csv journal")
		}
	case "none", "":
	default:
		add("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	return errors.Join(errs...)
}

// SaveToFile writes the configuration to path; YAML for .yaml/.yml
// extensions, JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// RiskPolicy maps the config section onto the evaluator's policy.
func (c *Config) RiskPolicy() risk.Policy {
	return risk.Policy{
		MaxPositionPct:       c.Risk.MaxPositionPct,
		MaxOpenPositions:     c.Risk.MaxOpenPositions,
		MaxExposurePct:       c.Risk.MaxExposurePct,
		StopLossPct:          c.Risk.StopLossPct,
		MaxDrawdownPct:       c.Risk.MaxDrawdownPct,
		MaxLeverage:          c.Risk.MaxLeverage,
		ConsecutiveLossLimit: c.Risk.ConsecutiveLossLimit,
		CooldownDays:         c.Risk.CooldownDays,
	}
}

// LeveragePolicy maps the config section onto the leverage package.
func (c *Config) LeveragePolicy() leverage.Config {
	return leverage.Config{
		Strategy: leverage.Strategy(c.Leverage.Strategy),
		Fixed:    c.Leverage.Fixed,
		Max:      c.Leverage.Max,
	}
}
