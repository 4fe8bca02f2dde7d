package portfolio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/9to5ninja-projects/cryptosniper/internal/id"
	"github.com/9to5ninja-projects/cryptosniper/journal"
	"github.com/9to5ninja-projects/cryptosniper/market"
)

const (
	// DefaultCloseTolerance is the quantity below which a position is
	// considered closed and removed from the book.
	DefaultCloseTolerance = 0.0001

	// DefaultSnapshotWindow bounds the in-memory performance series.
	DefaultSnapshotWindow = 30
)

// Ledger is the single source of truth for cash and holdings of one paper
// account. Every mutating method and every reader that walks the position
// map or trade history is serialized behind one mutex, so the background
// monitor, the synchronous processor, and manual callers can share an
// instance.
type Ledger struct {
	mu sync.Mutex

	startingBalance float64
	cash            float64
	positions       map[string]Position
	trades          []TradeRecord
	snapshots       []Snapshot

	totalTrades   int
	winningTrades int
	losingTrades  int

	closeTolerance float64
	snapshotWindow int

	journal journal.Journal
	log     zerolog.Logger
}

// New creates a ledger holding startingBalance in cash. Executed trades are
// additionally recorded to j; pass nil to skip journaling.
func New(startingBalance float64, j journal.Journal, log zerolog.Logger) *Ledger {
	if j == nil {
		j = journal.Nop{}
	}
	return &Ledger{
		startingBalance: startingBalance,
		cash:            startingBalance,
		positions:       make(map[string]Position),
		closeTolerance:  DefaultCloseTolerance,
		snapshotWindow:  DefaultSnapshotWindow,
		journal:         j,
		log:             log.With().Str("component", "ledger").Logger(),
	}
}

// SetCloseTolerance overrides the dust threshold below which a sold-down
// position is removed.
func (l *Ledger) SetCloseTolerance(eps float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if eps > 0 {
		l.closeTolerance = eps
	}
}

// SetSnapshotWindow overrides how many post-trade snapshots are retained.
func (l *Ledger) SetSnapshotWindow(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > 0 {
		l.snapshotWindow = n
	}
}

// ExecuteTrade applies one signal to the book. Entry kinds buy, exit kinds
// sell, everything else is the benign NoActionForSignal outcome. usdSize is
// the notional to trade; quantity is derived from the signal price.
func (l *Ledger) ExecuteTrade(sig market.Signal, usdSize float64) (TradeRecord, error) {
	if sig.Price <= 0 {
		return TradeRecord{}, tradeErr(InvalidPrice, "%s: invalid price %v", sig.Symbol, sig.Price)
	}
	if usdSize <= 0 {
		return TradeRecord{}, tradeErr(InvalidSize, "%s: invalid position size %v", sig.Symbol, usdSize)
	}

	quantity := usdSize / sig.Price

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case sig.Kind.IsEntry():
		return l.buyLocked(sig.Symbol, quantity, sig.Price)
	case sig.Kind.IsExit():
		return l.sellLocked(sig.Symbol, quantity, sig.Price)
	default:
		return TradeRecord{}, tradeErr(NoActionForSignal, "%s: no action for %s signal", sig.Symbol, sig.Kind)
	}
}

func (l *Ledger) buyLocked(symbol string, quantity, price float64) (TradeRecord, error) {
	cost := quantity * price
	if cost > l.cash {
		return TradeRecord{}, tradeErr(InsufficientFunds,
			"%s: buy needs %.2f, cash is %.2f", symbol, cost, l.cash)
	}

	l.cash -= cost

	if pos, ok := l.positions[symbol]; ok {
		newQty := pos.Quantity + quantity
		newCost := pos.TotalCost + cost
		l.positions[symbol] = Position{
			Symbol:    symbol,
			Quantity:  newQty,
			AvgPrice:  newCost / newQty,
			TotalCost: newCost,
		}
	} else {
		l.positions[symbol] = Position{
			Symbol:    symbol,
			Quantity:  quantity,
			AvgPrice:  price,
			TotalCost: cost,
		}
	}

	now := time.Now()
	rec := TradeRecord{
		TradeID:    id.New(),
		Timestamp:  now,
		Symbol:     symbol,
		Side:       SideBuy,
		Quantity:   quantity,
		Price:      price,
		TotalValue: cost,
		CashAfter:  l.cash,
	}
	l.trades = append(l.trades, rec)
	l.totalTrades++

	l.recordLocked(rec, now)

	l.log.Info().
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("cash", l.cash).
		Msg("buy executed")

	return rec, nil
}

func (l *Ledger) sellLocked(symbol string, quantity, price float64) (TradeRecord, error) {
	pos, ok := l.positions[symbol]
	if !ok {
		return TradeRecord{}, tradeErr(NoPosition, "%s: no position to sell", symbol)
	}

	// A request for more than we hold closes the whole position.
	if quantity > pos.Quantity {
		quantity = pos.Quantity
	}

	proceeds := quantity * price
	pnl := (price - pos.AvgPrice) * quantity
	pnlPct := (price - pos.AvgPrice) / pos.AvgPrice * 100

	l.cash += proceeds

	remaining := pos.Quantity - quantity
	if remaining <= l.closeTolerance {
		delete(l.positions, symbol)
	} else {
		l.positions[symbol] = Position{
			Symbol:    symbol,
			Quantity:  remaining,
			AvgPrice:  pos.AvgPrice,
			TotalCost: remaining * pos.AvgPrice,
		}
	}

	if pnl > 0 {
		l.winningTrades++
	} else {
		l.losingTrades++
	}

	now := time.Now()
	rec := TradeRecord{
		TradeID:    id.New(),
		Timestamp:  now,
		Symbol:     symbol,
		Side:       SideSell,
		Quantity:   quantity,
		Price:      price,
		TotalValue: proceeds,
		CashAfter:  l.cash,
		PnL:        &pnl,
		PnLPercent: &pnlPct,
	}
	l.trades = append(l.trades, rec)
	l.totalTrades++

	l.recordLocked(rec, now)

	l.log.Info().
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("pnl", pnl).
		Float64("cash", l.cash).
		Msg("sell executed")

	return rec, nil
}

// recordLocked appends a snapshot and writes the trade plus the snapshot to
// the journal. Journal failures are logged and swallowed: durable history is
// best-effort, the in-memory book stays correct regardless.
func (l *Ledger) recordLocked(rec TradeRecord, now time.Time) {
	snap := Snapshot{
		Timestamp:  now,
		TotalValue: l.valueLocked(nil, false),
		Cash:       l.cash,
		Positions:  copyPositions(l.positions),
	}
	l.snapshots = append(l.snapshots, snap)
	if len(l.snapshots) > l.snapshotWindow {
		l.snapshots = l.snapshots[len(l.snapshots)-l.snapshotWindow:]
	}

	var pnl, pnlPct *float64
	if rec.PnL != nil {
		v := *rec.PnL
		pnl = &v
	}
	if rec.PnLPercent != nil {
		v := *rec.PnLPercent
		pnlPct = &v
	}

	if err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:    rec.TradeID,
		Time:       rec.Timestamp,
		Symbol:     rec.Symbol,
		Side:       string(rec.Side),
		Quantity:   rec.Quantity,
		Price:      rec.Price,
		TotalValue: rec.TotalValue,
		CashAfter:  rec.CashAfter,
		PnL:        pnl,
		PnLPercent: pnlPct,
	}); err != nil {
		l.log.Error().Err(err).Str("trade_id", rec.TradeID).Msg("journal trade write failed")
	}

	if err := l.journal.RecordEquity(journal.EquitySnapshot{
		Time:       snap.Timestamp,
		TotalValue: snap.TotalValue,
		Cash:       snap.Cash,
		Positions:  len(snap.Positions),
	}); err != nil {
		l.log.Error().Err(err).Msg("journal equity write failed")
	}
}

// Value returns cash plus the market value of every open position. A symbol
// missing from prices falls back to its average cost and is logged as a
// data-quality warning, not treated as an error.
func (l *Ledger) Value(prices map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.valueLocked(prices, true)
}

func (l *Ledger) valueLocked(prices map[string]float64, warn bool) float64 {
	total := l.cash
	for sym, pos := range l.positions {
		price, ok := prices[sym]
		if !ok {
			if warn {
				l.log.Warn().Str("symbol", sym).Msg("no current price, valuing at average cost")
			}
			price = pos.AvgPrice
		}
		total += pos.MarketValue(price)
	}
	return total
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// StartingBalance returns the balance the account was opened with.
func (l *Ledger) StartingBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startingBalance
}

// Positions returns a copy of the open position map.
func (l *Ledger) Positions() map[string]Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyPositions(l.positions)
}

// Position returns the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[symbol]
	return pos, ok
}

// HasPosition reports whether symbol is currently held.
func (l *Ledger) HasPosition(symbol string) bool {
	_, ok := l.Position(symbol)
	return ok
}

// PositionCount returns the number of open positions.
func (l *Ledger) PositionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}

// Trades returns a copy of the full trade history, oldest first.
func (l *Ledger) Trades() []TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

// Snapshots returns a copy of the retained performance series.
func (l *Ledger) Snapshots() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Snapshot, len(l.snapshots))
	copy(out, l.snapshots)
	return out
}

// TradeCounts returns total, winning, and losing trade counters. Only SELLs
// with realized P&L count toward wins and losses.
func (l *Ledger) TradeCounts() (total, wins, losses int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalTrades, l.winningTrades, l.losingTrades
}

// Reset discards all positions, history, and counters, returning the
// account to its starting balance.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cash = l.startingBalance
	l.positions = make(map[string]Position)
	l.trades = nil
	l.snapshots = nil
	l.totalTrades = 0
	l.winningTrades = 0
	l.losingTrades = 0
}

func copyPositions(in map[string]Position) map[string]Position {
	out := make(map[string]Position, len(in))
	for sym, pos := range in {
		out[sym] = pos
	}
	return out
}
