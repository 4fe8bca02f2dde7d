package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "01TEST",
		Time:       now,
		Symbol:     "SOL",
		Side:       "BUY",
		Quantity:   5,
		Price:      100,
		TotalValue: 500,
		CashAfter:  9500,
	}))
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "02TEST",
		Time:       now,
		Symbol:     "SOL",
		Side:       "SELL",
		Quantity:   5,
		Price:      150,
		TotalValue: 750,
		CashAfter:  10250,
		PnL:        pnl(250),
		PnLPercent: pnl(50),
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:       now,
		TotalValue: 10250,
		Cash:       10250,
		Positions:  0,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 3) // header + 2 trades
	assert.Equal(t, "trade_id", rows[0][0])

	buy := rows[1]
	assert.Equal(t, "01TEST", buy[0])
	assert.Equal(t, "BUY", buy[3])
	assert.Empty(t, buy[8], "buy rows leave pnl blank")

	sell := rows[2]
	assert.Equal(t, "SELL", sell[3])
	assert.Equal(t, "250.000000", sell[8])

	eq := readCSV(t, equityPath)
	require.Len(t, eq, 2)
	assert.Equal(t, []string{"time", "total_value", "cash", "positions"}, eq[0])
	assert.Equal(t, "0", eq[1][3])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
