package ledger

// DailySnapshot is one performance record per calendar day. Capturing
// twice on the same day replaces the earlier record.
type DailySnapshot struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Equity        float64 `json:"equity"`
	DayPnL        float64 `json:"day_pnl"`
	OpenPositions int     `json:"open_positions"`
	WinRate7d     float64 `json:"win_rate_7d"`
	// Sharpe7d is recorded but not yet computed; rolling windows are
	// too short for a stable estimate at daily cadence.
	Sharpe7d float64 `json:"sharpe_7d"`
}

// upsertSnapshot replaces the record for s.Date if present, otherwise
// appends.
func upsertSnapshot(list []DailySnapshot, s DailySnapshot) []DailySnapshot {
	for i := range list {
		if list[i].Date == s.Date {
			list[i] = s
			return list
		}
	}
	return append(list, s)
}
