package portfolio

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ledgerState is the on-disk schema for a persisted ledger. The file is a
// periodic snapshot, not a write-ahead log: a crash between a trade and the
// next save loses that trade from disk, which is acceptable for a
// simulation.
type ledgerState struct {
	StartingBalance float64             `json:"starting_balance"`
	Cash            float64             `json:"cash"`
	Positions       map[string]Position `json:"positions"`
	Trades          []TradeRecord       `json:"trades"`
	Snapshots       []Snapshot          `json:"snapshots"`
	TotalTrades     int                 `json:"total_trades"`
	WinningTrades   int                 `json:"winning_trades"`
	LosingTrades    int                 `json:"losing_trades"`
	SavedAt         time.Time           `json:"saved_at"`
}

// SaveState writes the full aggregate to path as JSON. The write goes
// through a temp file and rename so a crash mid-save never leaves a
// truncated state file.
func (l *Ledger) SaveState(path string) error {
	l.mu.Lock()
	state := ledgerState{
		StartingBalance: l.startingBalance,
		Cash:            l.cash,
		Positions:       copyPositions(l.positions),
		Trades:          append([]TradeRecord(nil), l.trades...),
		Snapshots:       append([]Snapshot(nil), l.snapshots...),
		TotalTrades:     l.totalTrades,
		WinningTrades:   l.winningTrades,
		LosingTrades:    l.losingTrades,
		SavedAt:         time.Now(),
	}
	l.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	l.log.Debug().Str("path", path).Msg("ledger state saved")
	return nil
}

// LoadState restores the aggregate from path, best-effort: a missing file
// means start fresh, a malformed file is logged and ignored. Neither is an
// error; startup never fails on state restore.
func (l *Ledger) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Info().Str("path", path).Msg("no saved state, starting fresh")
			return nil
		}
		l.log.Warn().Err(err).Str("path", path).Msg("cannot read state file, starting fresh")
		return nil
	}

	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("malformed state file, starting fresh")
		return nil
	}
	if state.StartingBalance <= 0 {
		l.log.Warn().Str("path", path).Msg("state file has no starting balance, starting fresh")
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.startingBalance = state.StartingBalance
	l.cash = state.Cash
	l.positions = make(map[string]Position, len(state.Positions))
	for sym, pos := range state.Positions {
		// Re-enforce the no-dust invariant on restore.
		if pos.Quantity > l.closeTolerance {
			pos.Symbol = sym
			l.positions[sym] = pos
		}
	}
	l.trades = state.Trades
	l.snapshots = state.Snapshots
	if len(l.snapshots) > l.snapshotWindow {
		l.snapshots = l.snapshots[len(l.snapshots)-l.snapshotWindow:]
	}
	l.totalTrades = state.TotalTrades
	l.winningTrades = state.WinningTrades
	l.losingTrades = state.LosingTrades

	l.log.Info().
		Str("path", path).
		Float64("cash", l.cash).
		Int("positions", len(l.positions)).
		Time("saved_at", state.SavedAt).
		Msg("ledger state restored")
	return nil
}
