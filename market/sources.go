package market

import (
	"context"
	"errors"
)

// ErrPriceUnavailable is returned by a PriceSource when it has no current
// price for a symbol. Callers treat it as "skip for now", not as a fault.
var ErrPriceUnavailable = errors.New("price unavailable")

// AlertSource surfaces the currently-active signals. The order of the
// returned slice is whatever the alert engine produced and carries no
// meaning.
type AlertSource interface {
	ActiveAlerts(ctx context.Context) ([]Alert, error)
}

// PriceSource resolves the current price for a symbol.
// Implementations return ErrPriceUnavailable (possibly wrapped) when they
// cannot quote the symbol.
type PriceSource interface {
	PriceOf(ctx context.Context, symbol string) (float64, error)
}
