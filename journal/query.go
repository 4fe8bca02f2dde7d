package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, time, symbol, side, quantity, price, total_value, cash_after, pnl, pnl_percent
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBySymbol returns every trade for a symbol, oldest first.
func (j *SQLite) ListTradesBySymbol(symbol string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, symbol, side, quantity, price, total_value, cash_after, pnl, pnl_percent
		FROM trades
		WHERE symbol = ?
		ORDER BY time ASC`, symbol)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

// ListTradesBetween returns trades whose time is within [start, end), oldest first.
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, symbol, side, quantity, price, total_value, cash_after, pnl, pnl_percent
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

// ListEquityBetween returns equity snapshots within [start, end), oldest first.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, total_value, cash, positions
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.TotalValue, &e.Cash, &e.Positions); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTrade(row scannable) (TradeRecord, error) {
	var rec TradeRecord
	var pnl, pnlPct sql.NullFloat64

	err := row.Scan(
		&rec.TradeID,
		&rec.Time,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.Price,
		&rec.TotalValue,
		&rec.CashAfter,
		&pnl,
		&pnlPct,
	)
	if err != nil {
		return TradeRecord{}, err
	}

	if pnl.Valid {
		v := pnl.Float64
		rec.PnL = &v
	}
	if pnlPct.Valid {
		v := pnlPct.Float64
		rec.PnLPercent = &v
	}
	return rec, nil
}

func collectTrades(rows *sql.Rows) ([]TradeRecord, error) {
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
