// Package processor is the synchronous per-event trading path: one signal
// in, an immediate accept/reject decision out, with the accepted ones
// executed against the shared ledger.
package processor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/9to5ninja-projects/cryptosniper/market"
	"github.com/9to5ninja-projects/cryptosniper/portfolio"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionNone Action = "NO_ACTION"
)

// Decision reason codes, machine-readable for the export layer.
const (
	ReasonEntryAboveThreshold = "entry_above_threshold"
	ReasonExitSignal          = "exit_signal"
	ReasonAlreadyHolding      = "already_holding"
	ReasonBelowBuyThreshold   = "below_buy_threshold"
	ReasonBelowSellThreshold  = "below_sell_threshold"
	ReasonNoPositionToSell    = "no_position_to_sell"
	ReasonNoActionForSignal   = "no_action_for_signal"
	ReasonDisabled            = "processing_disabled"
)

type Decision struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// DecisionRecord is one processed signal with its decision and outcome,
// kept for later export and model feedback.
type DecisionRecord struct {
	Timestamp      time.Time              `json:"timestamp"`
	Signal         market.Signal          `json:"signal"`
	Decision       Decision               `json:"decision"`
	Trade          *portfolio.TradeRecord `json:"trade,omitempty"`
	Error          string                 `json:"error,omitempty"`
	PortfolioValue float64                `json:"portfolio_value"`
}

const (
	DefaultMinConfidenceBuy  = 75.0
	DefaultMinConfidenceSell = 60.0
	DefaultPositionSizeUSD   = 500.0
)

// Processor evaluates signals one at a time. Decide is pure; Process acts
// on the ledger and logs the decision. Entry and exit use independent
// confidence thresholds.
type Processor struct {
	ledger *portfolio.Ledger
	log    zerolog.Logger

	mu                sync.Mutex
	enabled           bool
	minConfidenceBuy  float64
	minConfidenceSell float64
	positionSizeUSD   float64
	decisions         []DecisionRecord
}

func New(ledger *portfolio.Ledger, log zerolog.Logger) *Processor {
	return &Processor{
		ledger:            ledger,
		log:               log.With().Str("component", "processor").Logger(),
		enabled:           true,
		minConfidenceBuy:  DefaultMinConfidenceBuy,
		minConfidenceSell: DefaultMinConfidenceSell,
		positionSizeUSD:   DefaultPositionSizeUSD,
	}
}

// SetThresholds overrides the entry/exit confidence gates and trade size.
// Non-positive size keeps the current value.
func (p *Processor) SetThresholds(minBuy, minSell, sizeUSD float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minConfidenceBuy = minBuy
	p.minConfidenceSell = minSell
	if sizeUSD > 0 {
		p.positionSizeUSD = sizeUSD
	}
}

// SetEnabled toggles signal processing. While disabled every signal is
// recorded as skipped.
func (p *Processor) SetEnabled(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
}

func (p *Processor) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Decide returns what, if anything, should be done about sig. It has no
// side effects.
func (p *Processor) Decide(sig market.Signal) Decision {
	p.mu.Lock()
	minBuy, minSell := p.minConfidenceBuy, p.minConfidenceSell
	enabled := p.enabled
	p.mu.Unlock()

	if !enabled {
		return Decision{Action: ActionNone, Reason: ReasonDisabled}
	}

	switch {
	case sig.Kind.IsEntry():
		if sig.Confidence < minBuy {
			return Decision{Action: ActionNone, Reason: ReasonBelowBuyThreshold}
		}
		if p.ledger.HasPosition(sig.Symbol) {
			return Decision{Action: ActionNone, Reason: ReasonAlreadyHolding}
		}
		return Decision{Action: ActionBuy, Reason: ReasonEntryAboveThreshold}

	case sig.Kind.IsExit():
		if sig.Confidence < minSell {
			return Decision{Action: ActionNone, Reason: ReasonBelowSellThreshold}
		}
		if !p.ledger.HasPosition(sig.Symbol) {
			return Decision{Action: ActionNone, Reason: ReasonNoPositionToSell}
		}
		return Decision{Action: ActionSell, Reason: ReasonExitSignal}

	default:
		return Decision{Action: ActionNone, Reason: ReasonNoActionForSignal}
	}
}

// Process decides on sig and, when the decision is to act, executes the
// trade. Every signal gets a decision-log entry regardless of outcome.
func (p *Processor) Process(sig market.Signal) DecisionRecord {
	decision := p.Decide(sig)

	rec := DecisionRecord{
		Timestamp: time.Now(),
		Signal:    sig,
		Decision:  decision,
	}

	switch decision.Action {
	case ActionBuy:
		p.mu.Lock()
		size := p.positionSizeUSD
		p.mu.Unlock()
		p.execute(&rec, sig, size)

	case ActionSell:
		// Full close: sell everything we hold at the signal price.
		if pos, ok := p.ledger.Position(sig.Symbol); ok {
			p.execute(&rec, sig, pos.Quantity*sig.Price)
		}

	default:
		p.log.Debug().
			Str("symbol", sig.Symbol).
			Str("kind", string(sig.Kind)).
			Float64("confidence", sig.Confidence).
			Str("reason", decision.Reason).
			Msg("no trade")
	}

	rec.PortfolioValue = p.ledger.Value(nil)

	p.mu.Lock()
	p.decisions = append(p.decisions, rec)
	p.mu.Unlock()

	return rec
}

func (p *Processor) execute(rec *DecisionRecord, sig market.Signal, usdSize float64) {
	trade, err := p.ledger.ExecuteTrade(sig, usdSize)
	if err != nil {
		rec.Error = err.Error()
		p.log.Warn().Err(err).
			Str("symbol", sig.Symbol).
			Str("action", string(rec.Decision.Action)).
			Msg("trade rejected")
		return
	}
	rec.Trade = &trade
}

// DecisionLog returns a copy of every decision made so far.
func (p *Processor) DecisionLog() []DecisionRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]DecisionRecord, len(p.decisions))
	copy(out, p.decisions)
	return out
}

// Report bundles the decision log with the ledger's history for export and
// offline training.
type Report struct {
	Decisions     []DecisionRecord        `json:"decisions"`
	Trades        []portfolio.TradeRecord `json:"trades"`
	Snapshots     []portfolio.Snapshot    `json:"snapshots"`
	FinalValue    float64                 `json:"final_value"`
	TotalTrades   int                     `json:"total_trades"`
	WinningTrades int                     `json:"winning_trades"`
	LosingTrades  int                     `json:"losing_trades"`
}

func (p *Processor) Report() Report {
	total, wins, losses := p.ledger.TradeCounts()
	return Report{
		Decisions:     p.DecisionLog(),
		Trades:        p.ledger.Trades(),
		Snapshots:     p.ledger.Snapshots(),
		FinalValue:    p.ledger.Value(nil),
		TotalTrades:   total,
		WinningTrades: wins,
		LosingTrades:  losses,
	}
}
