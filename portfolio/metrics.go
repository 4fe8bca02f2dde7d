package portfolio

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is the conventional annualization factor. Snapshots are
// taken per trade rather than per calendar day, so the annualized Sharpe is
// an approximation; SharpeRaw carries the unscaled ratio.
const tradingDaysPerYear = 252

// Metrics is the derived performance view of a ledger, computed against
// externally supplied current prices.
type Metrics struct {
	CurrentValue    float64 `json:"current_value"`
	StartingBalance float64 `json:"starting_balance"`
	TotalReturnPct  float64 `json:"total_return_pct"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	Sharpe         float64 `json:"sharpe"`
	SharpeRaw      float64 `json:"sharpe_raw"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`

	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`

	Cash          float64   `json:"cash"`
	PositionCount int       `json:"position_count"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Metrics computes the full performance summary. Degenerate states (no
// trades, fewer than two snapshots, zero variance) yield zeros rather than
// errors.
func (l *Ledger) Metrics(prices map[string]float64) Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := Metrics{
		CurrentValue:    l.valueLocked(prices, true),
		StartingBalance: l.startingBalance,
		TotalTrades:     l.totalTrades,
		WinningTrades:   l.winningTrades,
		LosingTrades:    l.losingTrades,
		Cash:            l.cash,
		PositionCount:   len(l.positions),
		LastUpdated:     time.Now(),
	}

	m.TotalReturnPct = (m.CurrentValue - l.startingBalance) / l.startingBalance * 100

	if l.totalTrades > 0 {
		m.WinRate = float64(l.winningTrades) / float64(l.totalTrades) * 100
	}

	m.SharpeRaw, m.Sharpe = l.sharpeLocked()
	m.MaxDrawdownPct = l.maxDrawdownLocked()

	for _, t := range l.trades {
		if t.Side == SideSell && t.PnL != nil {
			m.RealizedPnL += *t.PnL
		}
	}

	for sym, pos := range l.positions {
		if price, ok := prices[sym]; ok {
			m.UnrealizedPnL += pos.UnrealizedPL(price)
		}
	}

	return m
}

// sharpeLocked derives the Sharpe ratio from returns between consecutive
// snapshots: the raw mean/stdev ratio and the same scaled by √252.
func (l *Ledger) sharpeLocked() (raw, annualized float64) {
	if len(l.snapshots) < 2 {
		return 0, 0
	}

	returns := make([]float64, 0, len(l.snapshots)-1)
	for i := 1; i < len(l.snapshots); i++ {
		prev := l.snapshots[i-1].TotalValue
		if prev == 0 {
			continue
		}
		returns = append(returns, (l.snapshots[i].TotalValue-prev)/prev)
	}
	if len(returns) < 2 {
		return 0, 0
	}

	std := stat.StdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0, 0
	}

	raw = stat.Mean(returns, nil) / std
	return raw, raw * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdownLocked returns the largest peak-to-trough decline, as a
// percentage of the peak, across the retained snapshot history.
func (l *Ledger) maxDrawdownLocked() float64 {
	if len(l.snapshots) < 2 {
		return 0
	}

	peak := l.snapshots[0].TotalValue
	maxDD := 0.0
	for _, s := range l.snapshots {
		if s.TotalValue > peak {
			peak = s.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - s.TotalValue) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// PositionDetail is one open position marked to the given price, for
// display and export collaborators.
type PositionDetail struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	AvgPrice         float64 `json:"avg_price"`
	CurrentPrice     float64 `json:"current_price"`
	MarketValue      float64 `json:"market_value"`
	TotalCost        float64 `json:"total_cost"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
}

// Summary bundles metrics, per-position detail, and recent trades.
type Summary struct {
	Metrics      Metrics          `json:"metrics"`
	Positions    []PositionDetail `json:"positions"`
	RecentTrades []TradeRecord    `json:"recent_trades"`
}

const recentTradeCount = 10

// Summary returns the display-oriented view of the book. Positions are
// sorted by symbol; RecentTrades holds the last ten trades, oldest first.
func (l *Ledger) Summary(prices map[string]float64) Summary {
	s := Summary{Metrics: l.Metrics(prices)}

	l.mu.Lock()
	defer l.mu.Unlock()

	for sym, pos := range l.positions {
		price, ok := prices[sym]
		if !ok {
			price = pos.AvgPrice
		}
		detail := PositionDetail{
			Symbol:        sym,
			Quantity:      pos.Quantity,
			AvgPrice:      pos.AvgPrice,
			CurrentPrice:  price,
			MarketValue:   pos.MarketValue(price),
			TotalCost:     pos.TotalCost,
			UnrealizedPnL: pos.UnrealizedPL(price),
		}
		if pos.TotalCost > 0 {
			detail.UnrealizedPnLPct = detail.UnrealizedPnL / pos.TotalCost * 100
		}
		s.Positions = append(s.Positions, detail)
	}
	sort.Slice(s.Positions, func(i, j int) bool {
		return s.Positions[i].Symbol < s.Positions[j].Symbol
	})

	n := len(l.trades)
	start := n - recentTradeCount
	if start < 0 {
		start = 0
	}
	s.RecentTrades = make([]TradeRecord, n-start)
	copy(s.RecentTrades, l.trades[start:])

	return s
}
