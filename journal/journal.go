package journal

import "time"

// TradeRecord is one executed paper trade as persisted by a Journal.
// PnL and PnLPercent are set only for SELL rows, computed against the
// position's average cost at the time of sale.
type TradeRecord struct {
	TradeID    string
	Time       time.Time
	Symbol     string
	Side       string // "BUY" or "SELL"
	Quantity   float64
	Price      float64
	TotalValue float64
	CashAfter  float64
	PnL        *float64
	PnLPercent *float64
}

// EquitySnapshot is the portfolio's value at a point in time, taken after
// each executed trade.
type EquitySnapshot struct {
	Time       time.Time
	TotalValue float64
	Cash       float64
	Positions  int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop is a Journal that discards everything. Used when journaling is
// disabled in config.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
