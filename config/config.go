// Package config loads the paper-trading configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/9to5ninja-projects/cryptosniper/monitor"
)

// Config is the complete runtime configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	AutoTrade AutoTradeConfig `json:"auto_trade" yaml:"auto_trade"`
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	State     StateConfig     `json:"state" yaml:"state"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// AccountConfig sets up the paper account.
type AccountConfig struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	CloseTolerance  float64 `json:"close_tolerance,omitempty" yaml:"close_tolerance,omitempty"`
	SnapshotWindow  int     `json:"snapshot_window,omitempty" yaml:"snapshot_window,omitempty"`
}

// AutoTradeConfig tunes the background monitor.
type AutoTradeConfig struct {
	MinConfidence       float64 `json:"min_confidence" yaml:"min_confidence"`
	PositionSizeUSD     float64 `json:"position_size_usd" yaml:"position_size_usd"`
	MaxPositions        int     `json:"max_positions" yaml:"max_positions"`
	CooldownSeconds     int     `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	PollSeconds         int     `json:"poll_seconds" yaml:"poll_seconds"`
	ErrorBackoffSeconds int     `json:"error_backoff_seconds" yaml:"error_backoff_seconds"`
	ProcessedTTLMinutes int     `json:"processed_ttl_minutes" yaml:"processed_ttl_minutes"`
}

// Settings converts the config block into monitor settings.
func (c AutoTradeConfig) Settings() monitor.Settings {
	return monitor.Settings{
		MinConfidence:   c.MinConfidence,
		PositionSizeUSD: c.PositionSizeUSD,
		MaxPositions:    c.MaxPositions,
		Cooldown:        time.Duration(c.CooldownSeconds) * time.Second,
		PollInterval:    time.Duration(c.PollSeconds) * time.Second,
		ErrorBackoff:    time.Duration(c.ErrorBackoffSeconds) * time.Second,
		ProcessedTTL:    time.Duration(c.ProcessedTTLMinutes) * time.Minute,
	}
}

// ProcessorConfig tunes the synchronous signal processor.
type ProcessorConfig struct {
	MinConfidenceBuy  float64 `json:"min_confidence_buy" yaml:"min_confidence_buy"`
	MinConfidenceSell float64 `json:"min_confidence_sell" yaml:"min_confidence_sell"`
	PositionSizeUSD   float64 `json:"position_size_usd" yaml:"position_size_usd"`
}

// JournalConfig selects the trade journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StateConfig controls ledger persistence.
type StateConfig struct {
	Path      string `json:"path" yaml:"path"`
	SaveEvery string `json:"save_every" yaml:"save_every"` // cron spec, e.g. "@every 1m"
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // console or json
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration to path, YAML or JSON by extension.
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

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	if c.Account.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}
	if c.Account.CloseTolerance < 0 {
		return fmt.Errorf("account.close_tolerance must not be negative")
	}
	if c.AutoTrade.MinConfidence < 0 || c.AutoTrade.MinConfidence > 100 {
		return fmt.Errorf("auto_trade.min_confidence must be within [0,100]")
	}
	if c.AutoTrade.PositionSizeUSD <= 0 {
		return fmt.Errorf("auto_trade.position_size_usd must be positive")
	}
	if c.AutoTrade.MaxPositions <= 0 {
		return fmt.Errorf("auto_trade.max_positions must be positive")
	}
	if c.AutoTrade.PollSeconds <= 0 || c.AutoTrade.ErrorBackoffSeconds <= 0 {
		return fmt.Errorf("auto_trade poll and backoff intervals must be positive")
	}
	if c.Processor.MinConfidenceBuy < 0 || c.Processor.MinConfidenceBuy > 100 {
		return fmt.Errorf("processor.min_confidence_buy must be within [0,100]")
	}
	if c.Processor.MinConfidenceSell < 0 || c.Processor.MinConfidenceSell > 100 {
		return fmt.Errorf("processor.min_confidence_sell must be within [0,100]")
	}
	if c.Processor.PositionSizeUSD <= 0 {
		return fmt.Errorf("processor.position_size_usd must be positive")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}

	if c.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be 'console' or 'json'")
	}

	return nil
}

// Default returns a configuration with the stock thresholds.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingBalance: 10000,
			CloseTolerance:  0.0001,
			SnapshotWindow:  30,
		},
		AutoTrade: AutoTradeConfig{
			MinConfidence:       85,
			PositionSizeUSD:     500,
			MaxPositions:        10,
			CooldownSeconds:     300,
			PollSeconds:         30,
			ErrorBackoffSeconds: 60,
			ProcessedTTLMinutes: 60,
		},
		Processor: ProcessorConfig{
			MinConfidenceBuy:  75,
			MinConfidenceSell: 60,
			PositionSizeUSD:   500,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./data/journal.db",
		},
		State: StateConfig{
			Path:      "./data/ledger.json",
			SaveEvery: "@every 1m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
