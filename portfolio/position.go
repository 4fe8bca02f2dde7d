package portfolio

// Position is an open long holding in one symbol. AvgPrice is the
// cost-weighted average entry price; it moves only on buys, never on sells.
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	AvgPrice  float64 `json:"avg_price"`
	TotalCost float64 `json:"total_cost"`
}

// MarketValue is the position's worth at the given price.
func (p Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

// UnrealizedPL is the mark-to-market gain or loss at the given price.
func (p Position) UnrealizedPL(price float64) float64 {
	return p.MarketValue(price) - p.TotalCost
}
