// Package ledger owns the append-only trade history, the account
// state record, and the daily snapshot list, together with their
// persistence contract.
package ledger

import (
	"time"

	"github.com/rustyeddy/fundsim/market"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

type ExitReason string

const (
	ExitTimeBased ExitReason = "TIME_BASED"
	ExitManual    ExitReason = "MANUAL"
	ExitStopLoss  ExitReason = "STOP_LOSS"
)

// Trade is one simulated funding position from entry to exit. Entry
// fields are fixed at open; exit fields are nil until the trade
// closes and immutable afterwards.
type Trade struct {
	ID        string           `json:"id"`
	Symbol    market.Symbol    `json:"symbol"`
	Direction market.Direction `json:"direction"`
	Strategy  market.Strategy  `json:"strategy"`
	Status    Status           `json:"status"`

	EntryTime   time.Time `json:"entry_time"`
	EntryRate   float64   `json:"entry_rate"`
	ImpliedRate float64   `json:"implied_rate"`
	EntryZScore float64   `json:"entry_z_score"`
	Notional    float64   `json:"notional"`
	Leverage    float64   `json:"leverage"`

	HoldDays      float64   `json:"hold_days"`
	ScheduledExit time.Time `json:"scheduled_exit"`

	ExitTime   *time.Time `json:"exit_time,omitempty"`
	ExitRate   *float64   `json:"exit_rate,omitempty"`
	ExitZScore *float64   `json:"exit_z_score,omitempty"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`

	RealizedPnL   *float64 `json:"realized_pnl,omitempty"`
	UnrealizedPnL float64  `json:"unrealized_pnl"`
	Fees          float64  `json:"fees"`
}

func (t *Trade) IsOpen() bool { return t.Status == StatusOpen }

// HoursHeld is the elapsed hold time at now, never negative.
func (t *Trade) HoursHeld(now time.Time) float64 {
	h := now.Sub(t.EntryTime).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// Consistent reports whether the closed-state invariant holds:
// status==CLOSED exactly when exit time and realized PnL are set.
func (t *Trade) Consistent() bool {
	closed := t.Status == StatusClosed
	if closed != (t.ExitTime != nil) {
		return false
	}
	if closed != (t.RealizedPnL != nil) {
		return false
	}
	if closed && t.UnrealizedPnL != 0 {
		return false
	}
	return true
}

// Won reports whether a closed trade realized a profit. Open trades
// never count as wins.
func (t *Trade) Won() bool {
	return t.RealizedPnL != nil && *t.RealizedPnL > 0
}
