package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/9to5ninja-projects/cryptosniper/internal/logging"
	"github.com/9to5ninja-projects/cryptosniper/portfolio"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the saved ledger's positions and performance metrics",
	Long: `Load the persisted ledger state and print performance metrics and
open positions. Positions are valued at their average cost; live pricing
belongs to the dashboard.

Example:
  sniper status --config sniper.yaml`,
	RunE: runStatus,
}

var statusConfigPath string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults apply if omitted")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(statusConfigPath)
	if err != nil {
		return err
	}

	log := logging.New("error", cfg.Logging.Format)

	ledger := portfolio.New(cfg.Account.StartingBalance, nil, log)
	ledger.LoadState(cfg.State.Path)

	s := ledger.Summary(nil)
	m := s.Metrics

	fmt.Printf("Portfolio value: $%.2f (%+.2f%%)\n", m.CurrentValue, m.TotalReturnPct)
	fmt.Printf("Cash:            $%.2f\n", m.Cash)
	fmt.Printf("Trades:          %d (%d wins / %d losses, win rate %.1f%%)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate)
	fmt.Printf("Realized P&L:    $%+.2f\n", m.RealizedPnL)
	fmt.Printf("Max drawdown:    %.2f%%\n", m.MaxDrawdownPct)
	fmt.Printf("Sharpe (ann.):   %.3f (raw %.3f)\n", m.Sharpe, m.SharpeRaw)

	if len(s.Positions) == 0 {
		fmt.Println("\nNo open positions.")
		return nil
	}

	fmt.Printf("\nOpen positions (%d):\n", len(s.Positions))
	for _, p := range s.Positions {
		fmt.Printf("  %-8s %12.4f @ $%.4f  cost $%.2f\n",
			p.Symbol, p.Quantity, p.AvgPrice, p.TotalCost)
	}
	return nil
}
