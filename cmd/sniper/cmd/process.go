package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/9to5ninja-projects/cryptosniper/internal/logging"
	"github.com/9to5ninja-projects/cryptosniper/market"
	"github.com/9to5ninja-projects/cryptosniper/portfolio"
	"github.com/9to5ninja-projects/cryptosniper/processor"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a batch of signals through the synchronous decision path",
	Long: `Feed signals one at a time through the synchronous signal processor
against the saved ledger, then persist the updated state.

The signals file is a JSON array:

  [
    {"symbol": "SOL", "signal": "BUY", "confidence": 85, "price": 183.99}
  ]

Example:
  sniper process --config sniper.yaml --signals today.json`,
	RunE: runProcess,
}

var (
	processConfigPath  string
	processSignalsPath string
)

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults apply if omitted")
	processCmd.Flags().StringVarP(&processSignalsPath, "signals", "s", "", "path to signals file (JSON) (required)")
	processCmd.MarkFlagRequired("signals")
}

type signalInput struct {
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Price      float64 `json:"price"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(processConfigPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(processSignalsPath)
	if err != nil {
		return fmt.Errorf("read signals: %w", err)
	}
	var inputs []signalInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("parse signals: %w", err)
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
	ledger.LoadState(cfg.State.Path)

	proc := processor.New(ledger, log)
	proc.SetThresholds(cfg.Processor.MinConfidenceBuy, cfg.Processor.MinConfidenceSell, cfg.Processor.PositionSizeUSD)

	for _, in := range inputs {
		kind, err := market.ParseKind(in.Signal)
		if err != nil {
			fmt.Printf("  ? %-8s skipped: %v\n", in.Symbol, err)
			continue
		}

		rec := proc.Process(market.Signal{
			Symbol:     in.Symbol,
			Kind:       kind,
			Confidence: in.Confidence,
			Price:      in.Price,
			Timestamp:  time.Now(),
		})

		switch {
		case rec.Trade != nil:
			fmt.Printf("  ✓ %-8s %s %.4f @ $%.4f\n", in.Symbol, rec.Decision.Action, rec.Trade.Quantity, rec.Trade.Price)
		case rec.Error != "":
			fmt.Printf("  ✗ %-8s %s rejected: %s\n", in.Symbol, rec.Decision.Action, rec.Error)
		default:
			fmt.Printf("  - %-8s no trade (%s)\n", in.Symbol, rec.Decision.Reason)
		}
	}

	m := ledger.Metrics(nil)
	fmt.Printf("\nPortfolio: $%.2f (%+.2f%%), cash $%.2f, %d open positions\n",
		m.CurrentValue, m.TotalReturnPct, m.Cash, m.PositionCount)

	if err := ledger.SaveState(cfg.State.Path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
