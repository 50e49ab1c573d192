package engine

import "github.com/rustyeddy/fundsim/market"

// Rates are annualized; accrual happens hour by hour.
const hoursPerYear = 8760

// HourlyAccrual is one hour of funding PnL: the spread between the
// fixed entry rate and the floating observed rate, de-annualized and
// scaled by notional. A SHORT receives fixed and pays floating, so it
// profits when the floating rate falls below entry; a LONG is the
// mirror image.
func HourlyAccrual(dir market.Direction, entryRate, observedRate, notional float64) float64 {
	spread := (entryRate - observedRate) / hoursPerYear
	if dir == market.Long {
		spread = -spread
	}
	return spread * notional
}

// AccruedPnL integrates hourly accrual over a series of observed
// rates, one sample per elapsed hour.
func AccruedPnL(dir market.Direction, entryRate, notional float64, hourlyRates []float64) float64 {
	var pnl float64
	for _, r := range hourlyRates {
		pnl += HourlyAccrual(dir, entryRate, r, notional)
	}
	return pnl
}

// MarkPnL is the single-rate simplification used for live marking,
// where only the latest observation is available: the current spread
// held constant over the hours elapsed since entry.
func MarkPnL(dir market.Direction, entryRate, observedRate, notional, hoursHeld float64) float64 {
	return HourlyAccrual(dir, entryRate, observedRate, notional) * hoursHeld
}
