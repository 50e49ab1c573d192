package ledger

import "time"

// AccountState is the single account-level record. Equity moves only
// on realized PnL; the peak is a non-decreasing watermark used for
// drawdown checks.
type AccountState struct {
	OpenPositions   []string  `json:"open_positions"`
	Equity          float64   `json:"equity"`
	StartingCapital float64   `json:"starting_capital"`
	PeakEquity      float64   `json:"peak_equity"`
	AlertsSeen      int       `json:"alerts_seen"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewAccountState initializes a fresh account with equity and peak at
// the starting capital.
func NewAccountState(startingCapital float64, now time.Time) AccountState {
	return AccountState{
		Equity:          startingCapital,
		StartingCapital: startingCapital,
		PeakEquity:      startingCapital,
		UpdatedAt:       now,
	}
}

// Drawdown is the fractional decline of equity from its peak.
func (a *AccountState) Drawdown() float64 {
	if a.PeakEquity <= 0 {
		return 0
	}
	dd := (a.PeakEquity - a.Equity) / a.PeakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

// HasOpen reports whether the id is in the open-position set.
func (a *AccountState) HasOpen(id string) bool {
	for _, v := range a.OpenPositions {
		if v == id {
			return true
		}
	}
	return false
}

func (a *AccountState) addOpen(id string) {
	if a.HasOpen(id) {
		return
	}
	a.OpenPositions = append(a.OpenPositions, id)
}

func (a *AccountState) removeOpen(id string) {
	for i, v := range a.OpenPositions {
		if v == id {
			a.OpenPositions = append(a.OpenPositions[:i], a.OpenPositions[i+1:]...)
			return
		}
	}
}

// applyRealized credits a realized PnL to equity and raises the peak
// watermark if the new equity exceeds it.
func (a *AccountState) applyRealized(pnl float64, now time.Time) {
	a.Equity += pnl
	if a.Equity > a.PeakEquity {
		a.PeakEquity = a.Equity
	}
	a.UpdatedAt = now
}
