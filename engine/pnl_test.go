package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/fundsim/market"
)

func TestHourlyAccrualSigns(t *testing.T) {
	t.Parallel()

	// SHORT receives the fixed entry rate: profits when floating drops.
	short := HourlyAccrual(market.Short, 0.10, 0.02, 10000)
	assert.Greater(t, short, 0.0)

	// Same rates on a LONG lose.
	long := HourlyAccrual(market.Long, 0.10, 0.02, 10000)
	assert.Less(t, long, 0.0)
	assert.InDelta(t, -short, long, 1e-12)

	// LONG profits when the floating rate rises above entry.
	long = HourlyAccrual(market.Long, 0.02, 0.10, 10000)
	assert.Greater(t, long, 0.0)
}

func TestAccruedPnLMatchesMarkForConstantRate(t *testing.T) {
	t.Parallel()

	hours := make([]float64, 168)
	for i := range hours {
		hours[i] = 0.05
	}

	series := AccruedPnL(market.Short, 0.15, 10000, hours)
	single := MarkPnL(market.Short, 0.15, 0.05, 10000, 168)
	assert.InDelta(t, series, single, 1e-9,
		"hourly series and single-rate forms must agree for a constant rate")
}

func TestAccruedPnLReferenceScenario(t *testing.T) {
	t.Parallel()

	// SHORT $10k notional, entry 15% APR, floating pinned at 5% for a
	// week: (0.15-0.05)/8760 * 10000 * 168.
	got := MarkPnL(market.Short, 0.15, 0.05, 10000, 168)
	assert.InDelta(t, 19.18, got, 0.01)
}

func TestMarkPnLZeroHours(t *testing.T) {
	t.Parallel()

	assert.Zero(t, MarkPnL(market.Short, 0.15, 0.05, 10000, 0))
}
