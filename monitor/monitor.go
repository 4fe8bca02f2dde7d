// Package monitor runs the automated trading loop: it polls the alert
// engine for active signals, applies entry and exit gates, and executes
// qualifying trades against the shared ledger.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/9to5ninja-projects/cryptosniper/market"
	"github.com/9to5ninja-projects/cryptosniper/portfolio"
)

// Settings are the monitor's runtime-tunable thresholds.
type Settings struct {
	MinConfidence   float64       // entry gate, 0-100
	PositionSizeUSD float64       // notional per opened position
	MaxPositions    int           // open-position cap
	Cooldown        time.Duration // per-symbol minimum time between trades
	PollInterval    time.Duration // time between cycles
	ErrorBackoff    time.Duration // sleep after a failed cycle
	ProcessedTTL    time.Duration // dedup horizon for alert IDs
}

func DefaultSettings() Settings {
	return Settings{
		MinConfidence:   85,
		PositionSizeUSD: 500,
		MaxPositions:    10,
		Cooldown:        5 * time.Minute,
		PollInterval:    30 * time.Second,
		ErrorBackoff:    time.Minute,
		ProcessedTTL:    time.Hour,
	}
}

// Status is a read-only view of the monitor, safe to request from any
// goroutine.
type Status struct {
	Enabled         bool     `json:"enabled"`
	Running         bool     `json:"running"`
	TradesExecuted  int      `json:"trades_executed"`
	ProcessedAlerts int      `json:"processed_alerts"`
	OpenPositions   int      `json:"open_positions"`
	Settings        Settings `json:"settings"`
}

// stopTimeout bounds how long Stop waits for the loop to join.
const stopTimeout = 5 * time.Second

// AutoTrader wraps one ledger, one alert source, and one price source.
// The loop itself is a single goroutine; cycles never overlap, and each
// executed trade is atomic under the ledger's lock, so stopping can only
// ever land between trades.
type AutoTrader struct {
	ledger *portfolio.Ledger
	alerts market.AlertSource
	prices market.PriceSource
	log    zerolog.Logger

	processed *processedSet

	mu             sync.Mutex
	settings       Settings
	enabled        bool
	running        bool
	tradesExecuted int
	lastTrade      map[string]time.Time
	cancel         context.CancelFunc
	done           chan struct{}
}

func New(ledger *portfolio.Ledger, alerts market.AlertSource, prices market.PriceSource, settings Settings, log zerolog.Logger) *AutoTrader {
	return &AutoTrader{
		ledger:    ledger,
		alerts:    alerts,
		prices:    prices,
		log:       log.With().Str("component", "monitor").Logger(),
		processed: newProcessedSet(settings.ProcessedTTL),
		settings:  settings,
		lastTrade: make(map[string]time.Time),
	}
}

// Start launches the monitor loop. It fails if the loop is already running.
func (m *AutoTrader) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	m.enabled = true

	go m.loop(ctx, m.done)
	return nil
}

// Stop signals the loop to exit and waits for it to join, bounded by
// stopTimeout. Stopping an already-stopped monitor is a no-op.
func (m *AutoTrader) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.enabled = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(stopTimeout):
		return fmt.Errorf("monitor loop did not stop within %s", stopTimeout)
	}
}

func (m *AutoTrader) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
	}()

	m.log.Info().Msg("auto-trading monitor started")

	for {
		sleep := m.currentSettings().PollInterval

		if err := m.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				m.log.Info().Msg("auto-trading monitor stopped")
				return
			}
			m.log.Error().Err(err).Msg("monitor cycle failed")
			sleep = m.currentSettings().ErrorBackoff
		}

		select {
		case <-ctx.Done():
			m.log.Info().Msg("auto-trading monitor stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// runCycle executes one poll: fetch active alerts, run the entry pass, then
// the exit pass, both in alert-source order. A panic inside a cycle is
// converted to an error so the loop backs off and retries instead of
// crashing the process.
func (m *AutoTrader) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	m.processed.Prune()

	alerts, err := m.alerts.ActiveAlerts(ctx)
	if err != nil {
		return fmt.Errorf("list active alerts: %w", err)
	}

	m.entryPass(ctx, alerts)
	m.exitPass(ctx, alerts)
	return ctx.Err()
}

// entryPass evaluates each not-yet-processed alert against the entry gate
// and opens qualifying positions. Alerts are marked processed whatever the
// trade outcome; the one exception is a price lookup failure, which leaves
// the alert unmarked so it is retried next cycle if still active.
func (m *AutoTrader) entryPass(ctx context.Context, alerts []market.Alert) {
	for _, a := range alerts {
		if ctx.Err() != nil {
			return
		}
		if m.processed.Seen(a.ID) {
			continue
		}

		ok, reason := m.entryGate(a)
		if !ok {
			if reason != "" {
				m.log.Debug().
					Str("alert", a.ID).
					Str("symbol", a.Symbol).
					Str("reason", reason).
					Msg("entry skipped")
			}
			m.processed.Mark(a.ID)
			continue
		}

		price, err := m.prices.PriceOf(ctx, a.Symbol)
		if err != nil {
			m.log.Warn().Err(err).
				Str("symbol", a.Symbol).
				Msg("no price for entry, deferring to next cycle")
			continue
		}

		sig := market.Signal{
			Symbol:     a.Symbol,
			Kind:       a.Kind,
			Confidence: a.Confidence,
			Price:      price,
			Timestamp:  time.Now(),
		}

		size := m.currentSettings().PositionSizeUSD
		if _, err := m.ledger.ExecuteTrade(sig, size); err != nil {
			m.log.Warn().Err(err).
				Str("symbol", a.Symbol).
				Msg("auto-entry rejected")
		} else {
			m.noteTrade(a.Symbol)
			m.log.Info().
				Str("symbol", a.Symbol).
				Str("kind", string(a.Kind)).
				Float64("confidence", a.Confidence).
				Float64("size_usd", size).
				Msg("auto-entry executed")
		}

		m.processed.Mark(a.ID)
	}
}

// exitPass closes any held position that has an active SELL or AVOID
// signal. Exits are always full closes at the current price.
func (m *AutoTrader) exitPass(ctx context.Context, alerts []market.Alert) {
	for _, a := range alerts {
		if ctx.Err() != nil {
			return
		}
		if !a.Kind.IsExit() {
			continue
		}

		pos, held := m.ledger.Position(a.Symbol)
		if !held {
			continue
		}

		price, err := m.prices.PriceOf(ctx, a.Symbol)
		if err != nil {
			m.log.Warn().Err(err).
				Str("symbol", a.Symbol).
				Msg("no price for exit, deferring to next cycle")
			continue
		}

		sig := market.Signal{
			Symbol:     a.Symbol,
			Kind:       a.Kind,
			Confidence: a.Confidence,
			Price:      price,
			Timestamp:  time.Now(),
		}

		rec, err := m.ledger.ExecuteTrade(sig, pos.Quantity*price)
		if err != nil {
			m.log.Warn().Err(err).
				Str("symbol", a.Symbol).
				Msg("auto-exit rejected")
			continue
		}

		m.noteTrade(a.Symbol)

		evt := m.log.Info().
			Str("symbol", a.Symbol).
			Str("kind", string(a.Kind))
		if rec.PnL != nil {
			evt = evt.Float64("pnl", *rec.PnL)
		}
		evt.Msg("auto-exit executed")
	}
}

// entryGate checks the qualification rules in order: confidence, signal
// kind, position cap, not already held, cooldown elapsed. The empty reason
// means the alert simply was not an entry signal.
func (m *AutoTrader) entryGate(a market.Alert) (bool, string) {
	s := m.currentSettings()

	if a.Confidence < s.MinConfidence {
		return false, "below_confidence"
	}
	if !a.Kind.IsEntry() {
		return false, ""
	}
	if m.ledger.PositionCount() >= s.MaxPositions {
		return false, "max_positions"
	}
	if m.ledger.HasPosition(a.Symbol) {
		return false, "already_holding"
	}

	m.mu.Lock()
	last, traded := m.lastTrade[a.Symbol]
	m.mu.Unlock()
	if traded && time.Since(last) < s.Cooldown {
		return false, "cooldown"
	}

	return true, ""
}

func (m *AutoTrader) noteTrade(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTrade[symbol] = time.Now()
	m.tradesExecuted++
}

func (m *AutoTrader) currentSettings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings replaces the runtime thresholds. Safe to call while the
// loop is running; the next gate evaluation sees the new values.
func (m *AutoTrader) UpdateSettings(s Settings) error {
	if err := validateSettings(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	m.processed.SetTTL(s.ProcessedTTL)

	m.log.Info().
		Float64("min_confidence", s.MinConfidence).
		Float64("position_size_usd", s.PositionSizeUSD).
		Int("max_positions", s.MaxPositions).
		Dur("cooldown", s.Cooldown).
		Msg("settings updated")
	return nil
}

func validateSettings(s Settings) error {
	if s.MinConfidence < 0 || s.MinConfidence > 100 {
		return fmt.Errorf("min confidence %v outside [0,100]", s.MinConfidence)
	}
	if s.PositionSizeUSD <= 0 {
		return fmt.Errorf("position size %v must be positive", s.PositionSizeUSD)
	}
	if s.MaxPositions <= 0 {
		return fmt.Errorf("max positions %d must be positive", s.MaxPositions)
	}
	if s.Cooldown < 0 || s.PollInterval <= 0 || s.ErrorBackoff <= 0 {
		return errors.New("cooldown, poll interval, and error backoff must be positive")
	}
	if s.ProcessedTTL > 0 && s.ProcessedTTL < 2*s.PollInterval {
		return errors.New("processed TTL must be at least twice the poll interval")
	}
	return nil
}

// Status reports the monitor's current state. Safe from any goroutine.
func (m *AutoTrader) Status() Status {
	m.mu.Lock()
	enabled, running := m.enabled, m.running
	trades := m.tradesExecuted
	settings := m.settings
	m.mu.Unlock()

	return Status{
		Enabled:         enabled,
		Running:         running,
		TradesExecuted:  trades,
		ProcessedAlerts: m.processed.Len(),
		OpenPositions:   m.ledger.PositionCount(),
		Settings:        settings,
	}
}

// ClearProcessed forgets every deduplicated alert ID, forcing the next
// cycle to re-evaluate everything the alert engine reports as active.
func (m *AutoTrader) ClearProcessed() {
	m.processed.Clear()
	m.log.Info().Msg("processed alert cache cleared")
}
