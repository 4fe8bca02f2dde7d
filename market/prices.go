package market

import (
	"context"
	"fmt"
	"sync"
)

// PriceTable is an in-memory PriceSource backed by a map. It is safe for
// concurrent use; the monitor reads it while feeders update it.
type PriceTable struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewPriceTable() *PriceTable {
	return &PriceTable{prices: make(map[string]float64)}
}

func (pt *PriceTable) Set(symbol string, price float64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.prices[symbol] = price
}

// SetAll replaces or adds every entry in prices.
func (pt *PriceTable) SetAll(prices map[string]float64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	for sym, p := range prices {
		pt.prices[sym] = p
	}
}

func (pt *PriceTable) PriceOf(ctx context.Context, symbol string) (float64, error) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	p, ok := pt.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%s: %w", symbol, ErrPriceUnavailable)
	}
	return p, nil
}

// Snapshot returns a copy of all known prices, keyed by symbol.
func (pt *PriceTable) Snapshot() map[string]float64 {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	out := make(map[string]float64, len(pt.prices))
	for sym, p := range pt.prices {
		out[sym] = p
	}
	return out
}

var _ PriceSource = (*PriceTable)(nil)
