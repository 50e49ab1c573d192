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
		(trade_id, symbol, direction, strategy, entry_rate, exit_rate, notional, leverage, open_time, close_time, realized_pnl, fees, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Direction, t.Strategy,
		t.EntryRate, t.ExitRate, t.Notional, t.Leverage,
		t.OpenTime, t.CloseTime, t.RealizedPnL, t.Fees, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, peak_equity, open_positions, realized_pnl)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Equity, e.PeakEquity, e.OpenPositions, e.RealizedPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
