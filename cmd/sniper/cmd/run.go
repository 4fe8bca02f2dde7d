package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/9to5ninja-projects/cryptosniper/config"
	"github.com/9to5ninja-projects/cryptosniper/internal/logging"
	"github.com/9to5ninja-projects/cryptosniper/journal"
	"github.com/9to5ninja-projects/cryptosniper/market"
	"github.com/9to5ninja-projects/cryptosniper/monitor"
	"github.com/9to5ninja-projects/cryptosniper/portfolio"
	"github.com/9to5ninja-projects/cryptosniper/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the automated paper-trading monitor",
	Long: `Start the paper-trading monitor: restore the ledger from its saved
state, poll for active alerts, and execute qualifying trades until
interrupted. Ledger state is saved periodically and on shutdown.

A scenario file (YAML) can seed prices and active alerts for offline runs:

  prices:
    SOL: 183.99
  alerts:
    - id: alert-1
      symbol: SOL
      kind: STRONG_BUY
      confidence: 91

Example:
  sniper run --config sniper.yaml --scenario demo.yaml`,
	RunE: runRun,
}

var (
	runConfigPath   string
	runScenarioPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults apply if omitted")
	runCmd.Flags().StringVar(&runScenarioPath, "scenario", "", "optional scenario file seeding prices and alerts")
}

func runRun(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	ledger := portfolio.New(cfg.Account.StartingBalance, j, log)
	if cfg.Account.CloseTolerance > 0 {
		ledger.SetCloseTolerance(cfg.Account.CloseTolerance)
	}
	if cfg.Account.SnapshotWindow > 0 {
		ledger.SetSnapshotWindow(cfg.Account.SnapshotWindow)
	}
	ledger.LoadState(cfg.State.Path)

	alerts := market.NewStaticAlerts()
	prices := market.NewPriceTable()
	if runScenarioPath != "" {
		if err := loadScenario(runScenarioPath, alerts, prices); err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
	}

	trader := monitor.New(ledger, alerts, prices, cfg.AutoTrade.Settings(), log)
	if err := trader.Start(); err != nil {
		return err
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.State.SaveEvery, scheduler.SaveStateJob{Ledger: ledger, Path: cfg.State.Path}); err != nil {
		return fmt.Errorf("schedule state save: %w", err)
	}
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := trader.Stop(); err != nil {
		log.Warn().Err(err).Msg("monitor stop")
	}
	sched.Stop()

	if err := ledger.SaveState(cfg.State.Path); err != nil {
		log.Error().Err(err).Msg("final state save failed")
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		if err := ensureDir(cfg.TradesFile, cfg.EquityFile); err != nil {
			return nil, err
		}
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		if err := ensureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func ensureDir(paths ...string) error {
	for _, p := range paths {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
	}
	return nil
}

type scenario struct {
	Prices map[string]float64 `yaml:"prices" json:"prices"`
	Alerts []scenarioAlert    `yaml:"alerts" json:"alerts"`
}

type scenarioAlert struct {
	ID         string  `yaml:"id" json:"id"`
	Symbol     string  `yaml:"symbol" json:"symbol"`
	Kind       string  `yaml:"kind" json:"kind"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

func loadScenario(path string, alerts *market.StaticAlerts, prices *market.PriceTable) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return err
	}

	prices.SetAll(sc.Prices)

	active := make([]market.Alert, 0, len(sc.Alerts))
	for _, a := range sc.Alerts {
		kind, err := market.ParseKind(a.Kind)
		if err != nil {
			return fmt.Errorf("alert %s: %w", a.ID, err)
		}
		active = append(active, market.Alert{
			ID:         a.ID,
			Symbol:     a.Symbol,
			Kind:       kind,
			Confidence: a.Confidence,
		})
	}
	alerts.SetActive(active)
	return nil
}
