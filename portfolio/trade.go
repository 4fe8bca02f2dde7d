package portfolio

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord is an immutable log entry for one executed trade. PnL and
// PnLPercent are set only on SELL records, computed against the position's
// average cost at the time of sale.
type TradeRecord struct {
	TradeID    string    `json:"trade_id"`
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	TotalValue float64   `json:"total_value"`
	CashAfter  float64   `json:"cash_after"`
	PnL        *float64  `json:"pnl,omitempty"`
	PnLPercent *float64  `json:"pnl_percent,omitempty"`
}

// Snapshot captures the portfolio's value after a trade. The ledger keeps a
// bounded rolling window of these for the performance series.
type Snapshot struct {
	Timestamp  time.Time           `json:"timestamp"`
	TotalValue float64             `json:"total_value"`
	Cash       float64             `json:"cash"`
	Positions  map[string]Position `json:"positions"`
}
