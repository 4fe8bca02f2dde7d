package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, symbol, side, quantity, price, total_value, cash_after, pnl, pnl_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time, t.Symbol, t.Side, t.Quantity,
		t.Price, t.TotalValue, t.CashAfter, nullable(t.PnL), nullable(t.PnLPercent),
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, total_value, cash, positions)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.TotalValue, e.Cash, e.Positions,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
