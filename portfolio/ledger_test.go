package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/9to5ninja-projects/cryptosniper/journal"
	"github.com/9to5ninja-projects/cryptosniper/market"
)

type testJournal struct {
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
	closed bool
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) error {
	j.trades = append(j.trades, rec)
	return nil
}

func (j *testJournal) RecordEquity(rec journal.EquitySnapshot) error {
	j.equity = append(j.equity, rec)
	return nil
}

func (j *testJournal) Close() error {
	j.closed = true
	return nil
}

func newLedger(t *testing.T, balance float64) (*Ledger, *testJournal) {
	t.Helper()
	j := &testJournal{}
	return New(balance, j, zerolog.Nop()), j
}

func buy(t *testing.T, l *Ledger, symbol string, price, usd float64) TradeRecord {
	t.Helper()
	rec, err := l.ExecuteTrade(market.Signal{
		Symbol:     symbol,
		Kind:       market.KindBuy,
		Confidence: 90,
		Price:      price,
		Timestamp:  time.Now(),
	}, usd)
	if err != nil {
		t.Fatalf("buy %s: %v", symbol, err)
	}
	return rec
}

func sell(t *testing.T, l *Ledger, symbol string, price, usd float64) TradeRecord {
	t.Helper()
	rec, err := l.ExecuteTrade(market.Signal{
		Symbol:     symbol,
		Kind:       market.KindSell,
		Confidence: 90,
		Price:      price,
		Timestamp:  time.Now(),
	}, usd)
	if err != nil {
		t.Fatalf("sell %s: %v", symbol, err)
	}
	return rec
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLedgerBuySellRoundTrip(t *testing.T) {
	l, _ := newLedger(t, 10000)

	// Buy $500 of SOL at $100.
	buy(t, l, "SOL", 100, 500)

	pos, ok := l.Position("SOL")
	if !ok {
		t.Fatal("expected SOL position")
	}
	if !approxEqual(pos.Quantity, 5, 1e-6) {
		t.Fatalf("quantity: got %v want 5", pos.Quantity)
	}
	if !approxEqual(pos.AvgPrice, 100, 1e-6) {
		t.Fatalf("avg price: got %v want 100", pos.AvgPrice)
	}
	if !approxEqual(l.Cash(), 9500, 1e-6) {
		t.Fatalf("cash: got %v want 9500", l.Cash())
	}

	// Buy $500 more at $120: weighted average cost.
	buy(t, l, "SOL", 120, 500)

	pos, _ = l.Position("SOL")
	wantQty := 5 + 500.0/120.0
	if !approxEqual(pos.Quantity, wantQty, 1e-6) {
		t.Fatalf("quantity: got %v want %v", pos.Quantity, wantQty)
	}
	if !approxEqual(pos.AvgPrice, 1000/wantQty, 1e-6) {
		t.Fatalf("avg price: got %v want %v", pos.AvgPrice, 1000/wantQty)
	}
	if !approxEqual(pos.TotalCost, pos.Quantity*pos.AvgPrice, 1e-6) {
		t.Fatalf("total cost %v != quantity*avgPrice %v", pos.TotalCost, pos.Quantity*pos.AvgPrice)
	}
	if !approxEqual(l.Cash(), 9000, 1e-6) {
		t.Fatalf("cash: got %v want 9000", l.Cash())
	}

	// Sell everything at $150.
	rec := sell(t, l, "SOL", 150, wantQty*150)

	if rec.PnL == nil {
		t.Fatal("sell record missing pnl")
	}
	wantPnL := (150 - pos.AvgPrice) * wantQty
	if !approxEqual(*rec.PnL, wantPnL, 1e-6) {
		t.Fatalf("pnl: got %v want %v", *rec.PnL, wantPnL)
	}
	if !approxEqual(l.Cash(), 9000+wantQty*150, 1e-6) {
		t.Fatalf("cash: got %v", l.Cash())
	}
	if l.HasPosition("SOL") {
		t.Fatal("position should be closed")
	}

	total, wins, losses := l.TradeCounts()
	if total != 3 || wins != 1 || losses != 0 {
		t.Fatalf("counts: total=%d wins=%d losses=%d", total, wins, losses)
	}
}

func TestLedgerRejectsBadInputs(t *testing.T) {
	l, _ := newLedger(t, 10000)

	_, err := l.ExecuteTrade(market.Signal{Symbol: "SOL", Kind: market.KindBuy, Price: 0}, 500)
	if k, _ := KindOf(err); k != InvalidPrice {
		t.Fatalf("zero price: got %v want InvalidPrice", err)
	}

	_, err = l.ExecuteTrade(market.Signal{Symbol: "SOL", Kind: market.KindBuy, Price: 100}, 0)
	if k, _ := KindOf(err); k != InvalidSize {
		t.Fatalf("zero size: got %v want InvalidSize", err)
	}

	_, err = l.ExecuteTrade(market.Signal{Symbol: "SOL", Kind: market.KindBuy, Price: 100}, 50000)
	if k, _ := KindOf(err); k != InsufficientFunds {
		t.Fatalf("oversized buy: got %v want InsufficientFunds", err)
	}
	if !approxEqual(l.Cash(), 10000, 1e-9) {
		t.Fatalf("failed buy must not touch cash: %v", l.Cash())
	}
}

func TestLedgerHoldAndWatchAreNoAction(t *testing.T) {
	l, _ := newLedger(t, 10000)

	for _, kind := range []market.SignalKind{market.KindHold, market.KindWatch} {
		_, err := l.ExecuteTrade(market.Signal{Symbol: "SOL", Kind: kind, Price: 100}, 500)
		if !IsNoAction(err) {
			t.Fatalf("%s: got %v want NoActionForSignal", kind, err)
		}
	}

	if total, _, _ := l.TradeCounts(); total != 0 {
		t.Fatalf("no-action signals must not count as trades: %d", total)
	}
	if len(l.Trades()) != 0 {
		t.Fatal("no-action signals must not append history")
	}
}

func TestLedgerSellUnheldSymbol(t *testing.T) {
	l, _ := newLedger(t, 10000)

	_, err := l.ExecuteTrade(market.Signal{Symbol: "ZZZ", Kind: market.KindSell, Price: 10}, 100)
	if k, _ := KindOf(err); k != NoPosition {
		t.Fatalf("got %v want NoPosition", err)
	}
	if !approxEqual(l.Cash(), 10000, 1e-9) {
		t.Fatalf("cash changed on rejected sell: %v", l.Cash())
	}
	if len(l.Trades()) != 0 {
		t.Fatal("trade history changed on rejected sell")
	}
}

func TestLedgerSellClampsToHeldQuantity(t *testing.T) {
	l, _ := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 500) // 5 SOL

	// Ask to sell 10 SOL worth; only 5 are held.
	rec := sell(t, l, "SOL", 100, 1000)

	if !approxEqual(rec.Quantity, 5, 1e-9) {
		t.Fatalf("sell quantity: got %v want 5 (clamped)", rec.Quantity)
	}
	if l.HasPosition("SOL") {
		t.Fatal("position should be fully closed")
	}
	if !approxEqual(l.Cash(), 10000, 1e-6) {
		t.Fatalf("cash: got %v want 10000", l.Cash())
	}
}

func TestLedgerPartialSellKeepsAvgPrice(t *testing.T) {
	l, _ := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 1000) // 10 SOL at 100
	sell(t, l, "SOL", 110, 440) // sell 4 SOL

	pos, ok := l.Position("SOL")
	if !ok {
		t.Fatal("expected remaining position")
	}
	if !approxEqual(pos.Quantity, 6, 1e-9) {
		t.Fatalf("quantity: got %v want 6", pos.Quantity)
	}
	if !approxEqual(pos.AvgPrice, 100, 1e-9) {
		t.Fatalf("partial sell must not move avg price: %v", pos.AvgPrice)
	}
	if !approxEqual(pos.TotalCost, 600, 1e-6) {
		t.Fatalf("total cost: got %v want 600", pos.TotalCost)
	}
}

func TestLedgerDustRemainderClosesPosition(t *testing.T) {
	l, _ := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 500) // 5 SOL

	// Sell all but a sliver below the close tolerance.
	sellQty := 5 - 0.00005
	sell(t, l, "SOL", 100, sellQty*100)

	if l.HasPosition("SOL") {
		t.Fatal("dust remainder should have been closed out")
	}
}

func TestLedgerLosingTradeCounted(t *testing.T) {
	l, _ := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 500)
	rec := sell(t, l, "SOL", 80, 400)

	if rec.PnL == nil || *rec.PnL >= 0 {
		t.Fatalf("expected a loss, got %v", rec.PnL)
	}

	_, wins, losses := l.TradeCounts()
	if wins != 0 || losses != 1 {
		t.Fatalf("wins=%d losses=%d", wins, losses)
	}
}

func TestLedgerJournalsTradesAndEquity(t *testing.T) {
	l, j := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 500)
	sell(t, l, "SOL", 150, 750)

	if len(j.trades) != 2 {
		t.Fatalf("journal trades: got %d want 2", len(j.trades))
	}
	if len(j.equity) != 2 {
		t.Fatalf("journal equity: got %d want 2", len(j.equity))
	}
	if j.trades[0].PnL != nil {
		t.Fatal("buy row must not carry pnl")
	}
	if j.trades[1].PnL == nil {
		t.Fatal("sell row must carry pnl")
	}
}

func TestLedgerSnapshotWindowBounded(t *testing.T) {
	l, _ := newLedger(t, 1000000)
	l.SetSnapshotWindow(5)

	for i := 0; i < 12; i++ {
		buy(t, l, "SOL", 100, 10)
	}

	if got := len(l.Snapshots()); got != 5 {
		t.Fatalf("snapshot window: got %d want 5", got)
	}
}

func TestLedgerCashNeverNegative(t *testing.T) {
	l, _ := newLedger(t, 1000)

	buy(t, l, "SOL", 100, 999)
	if _, err := l.ExecuteTrade(market.Signal{Symbol: "ETH", Kind: market.KindBuy, Price: 100}, 2); err == nil {
		t.Fatal("expected insufficient funds")
	}
	if l.Cash() < 0 {
		t.Fatalf("cash went negative: %v", l.Cash())
	}
}

func TestLedgerReset(t *testing.T) {
	l, _ := newLedger(t, 10000)

	buy(t, l, "SOL", 100, 500)
	l.Reset()

	if !approxEqual(l.Cash(), 10000, 1e-9) {
		t.Fatalf("cash after reset: %v", l.Cash())
	}
	if l.PositionCount() != 0 || len(l.Trades()) != 0 {
		t.Fatal("reset must clear positions and history")
	}
	if total, _, _ := l.TradeCounts(); total != 0 {
		t.Fatal("reset must clear counters")
	}
}
