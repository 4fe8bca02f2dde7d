package market

import (
	"fmt"
	"strings"
	"time"
)

// SignalKind classifies a trading signal produced by the analysis layer.
type SignalKind string

const (
	KindBuy       SignalKind = "BUY"
	KindStrongBuy SignalKind = "STRONG_BUY"
	KindSell      SignalKind = "SELL"
	KindAvoid     SignalKind = "AVOID"
	KindHold      SignalKind = "HOLD"
	KindWatch     SignalKind = "WATCH"
)

// IsEntry reports whether the kind calls for opening or adding to a position.
func (k SignalKind) IsEntry() bool {
	return k == KindBuy || k == KindStrongBuy
}

// IsExit reports whether the kind calls for closing a position.
func (k SignalKind) IsExit() bool {
	return k == KindSell || k == KindAvoid
}

// ParseKind converts a string into a SignalKind. Matching is
// case-insensitive and tolerates surrounding whitespace.
func ParseKind(s string) (SignalKind, error) {
	switch SignalKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindBuy:
		return KindBuy, nil
	case KindStrongBuy:
		return KindStrongBuy, nil
	case KindSell:
		return KindSell, nil
	case KindAvoid:
		return KindAvoid, nil
	case KindHold:
		return KindHold, nil
	case KindWatch:
		return KindWatch, nil
	}
	return "", fmt.Errorf("unknown signal kind %q", s)
}

// Signal is one trading signal as emitted by an external generator.
// Confidence is a 0-100 score; Price is the price the signal was scored at.
type Signal struct {
	Symbol     string
	Kind       SignalKind
	Confidence float64
	Price      float64
	Timestamp  time.Time
}

// Alert is a currently-active signal as surfaced by the alert engine.
// ID is stable for the lifetime of the alert instance and is what the
// monitor deduplicates on.
type Alert struct {
	ID         string
	Symbol     string
	Kind       SignalKind
	Confidence float64
}
