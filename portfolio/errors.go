package portfolio

import (
	"errors"
	"fmt"
)

// ErrorKind labels why a trade was rejected. Kinds are stable,
// machine-readable codes; callers branch on them rather than on message
// text.
type ErrorKind string

const (
	InvalidPrice      ErrorKind = "invalid_price"
	InvalidSize       ErrorKind = "invalid_size"
	InsufficientFunds ErrorKind = "insufficient_funds"
	NoPosition        ErrorKind = "no_position"
	NoActionForSignal ErrorKind = "no_action_for_signal"
)

// TradeError is a structured trade rejection. None of these are fatal;
// NoActionForSignal in particular is a valid "do nothing" outcome.
type TradeError struct {
	Kind ErrorKind
	msg  string
}

func (e *TradeError) Error() string { return e.msg }

func tradeErr(kind ErrorKind, format string, args ...any) *TradeError {
	return &TradeError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, if err is (or wraps) a TradeError.
func KindOf(err error) (ErrorKind, bool) {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// IsNoAction reports whether err is the benign "signal requires no trade"
// outcome.
func IsNoAction(err error) bool {
	k, ok := KindOf(err)
	return ok && k == NoActionForSignal
}
