package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "zero starting balance",
			mutate:  func(c *Config) { c.Account.StartingBalance = 0 },
			wantErr: "starting_balance",
		},
		{
			name:    "negative close tolerance",
			mutate:  func(c *Config) { c.Account.CloseTolerance = -1 },
			wantErr: "close_tolerance",
		},
		{
			name:    "confidence above 100",
			mutate:  func(c *Config) { c.AutoTrade.MinConfidence = 150 },
			wantErr: "min_confidence",
		},
		{
			name:    "zero position size",
			mutate:  func(c *Config) { c.AutoTrade.PositionSizeUSD = 0 },
			wantErr: "position_size_usd",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.AutoTrade.PollSeconds = 0 },
			wantErr: "poll",
		},
		{
			name:    "processor sell threshold out of range",
			mutate:  func(c *Config) { c.Processor.MinConfidenceSell = -5 },
			wantErr: "min_confidence_sell",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: "journal.type",
		},
		{
			name: "csv journal without file paths",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv"}
			},
			wantErr: "trades_file",
		},
		{
			name: "sqlite journal without db path",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "sqlite"}
			},
			wantErr: "db_path",
		},
		{
			name:    "missing state path",
			mutate:  func(c *Config) { c.State.Path = "" },
			wantErr: "state.path",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Account.StartingBalance = 25000
	cfg.AutoTrade.MinConfidence = 90
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 25000.0, loaded.Account.StartingBalance, 1e-9)
	assert.InDelta(t, 90.0, loaded.AutoTrade.MinConfidence, 1e-9)
	assert.Equal(t, "sqlite", loaded.Journal.Type)
}

func TestSaveAndLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Journal = JournalConfig{
		Type:       "csv",
		TradesFile: "trades.csv",
		EquityFile: "equity.csv",
	}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", loaded.Journal.Type)
	assert.Equal(t, "trades.csv", loaded.Journal.TradesFile)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  starting_balance: 50000\n"), 0o644))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 50000.0, loaded.Account.StartingBalance, 1e-9)
	assert.Equal(t, 10, loaded.AutoTrade.MaxPositions, "unset fields keep defaults")
	assert.Equal(t, "@every 1m", loaded.State.SaveEvery)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  starting_balance: -5\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestAutoTradeSettingsConversion(t *testing.T) {
	t.Parallel()

	s := Default().AutoTrade.Settings()
	assert.Equal(t, 5*time.Minute, s.Cooldown)
	assert.Equal(t, 30*time.Second, s.PollInterval)
	assert.Equal(t, time.Minute, s.ErrorBackoff)
	assert.Equal(t, time.Hour, s.ProcessedTTL)
	assert.InDelta(t, 85.0, s.MinConfidence, 1e-9)
}
