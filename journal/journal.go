// Package journal is the audit trail of closed trades and equity
// snapshots. It is write-mostly; the ledger remains the source of
// truth for engine state.
package journal

import "time"

type TradeRecord struct {
	TradeID   string
	Symbol    string
	Direction string
	Strategy  string

	EntryRate float64
	ExitRate  float64
	Notional  float64
	Leverage  float64

	OpenTime  time.Time
	CloseTime time.Time

	RealizedPnL float64
	Fees        float64
	Reason      string
}

type EquitySnapshot struct {
	Time          time.Time
	Equity        float64
	PeakEquity    float64
	OpenPositions int
	RealizedPnL   float64 // the PnL event that produced this snapshot
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Useful when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
