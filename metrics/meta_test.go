package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fundsim/ledger"
)

func TestComputeMetaEmpty(t *testing.T) {
	t.Parallel()

	m := ComputeMeta(nil, base)
	assert.Zero(t, m.DaysActive)
	assert.Equal(t, Trend(""), m.EdgeDecay.WinRateTrend)
}

func TestComputeMetaDaysActiveAndEfficiency(t *testing.T) {
	t.Parallel()

	now := base
	trades := []ledger.Trade{
		closedTrade("a", "BTC-PERP", 100, now.AddDate(0, 0, -10)),
		closedTrade("b", "BTC-PERP", -60, now.AddDate(0, 0, -5)),
	}
	// Entries are 72h before exit; the first entry anchors days active.
	m := ComputeMeta(trades, now)
	assert.Equal(t, 13, m.DaysActive)

	// 40 realized over 20000 notional.
	assert.InDelta(t, 0.002, m.CapitalEfficiency, 1e-9)

	// Placeholders stay zero until real feeds exist.
	assert.Zero(t, m.BTCCorrelation)
	assert.Zero(t, m.AvgSlippage)
}

func TestComputeMetaEdgeDecay(t *testing.T) {
	t.Parallel()

	now := base

	// Prior window (30-60 days back): 1 win, 3 losses -> 25%.
	// Recent window (last 30 days): 3 wins, 1 loss -> 75%.
	var trades []ledger.Trade
	priorPnls := []float64{50, -20, -30, -10}
	for i, pnl := range priorPnls {
		trades = append(trades, closedTrade(
			string(rune('a'+i)), "BTC-PERP", pnl, now.AddDate(0, 0, -40).Add(time.Duration(i)*time.Hour)))
	}
	recentPnls := []float64{40, 25, 10, -15}
	for i, pnl := range recentPnls {
		trades = append(trades, closedTrade(
			string(rune('p'+i)), "BTC-PERP", pnl, now.AddDate(0, 0, -10).Add(time.Duration(i)*time.Hour)))
	}

	m := ComputeMeta(trades, now)
	require.Equal(t, 4, m.EdgeDecay.RecentTrades)
	require.Equal(t, 4, m.EdgeDecay.PriorTrades)
	assert.InDelta(t, 75.0, m.EdgeDecay.RecentWinRate, 1e-9)
	assert.InDelta(t, 25.0, m.EdgeDecay.PriorWinRate, 1e-9)
	assert.Equal(t, TrendImproving, m.EdgeDecay.WinRateTrend)
}

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		delta float64
		want  Trend
	}{
		{"big gain", 10, TrendImproving},
		{"just over the band", 5.1, TrendImproving},
		{"at the band", 5, TrendStable},
		{"flat", 0, TrendStable},
		{"small loss", -4.9, TrendStable},
		{"big loss", -8, TrendDeclining},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classify(tt.delta))
		})
	}
}

func TestReporterCaptureDaily(t *testing.T) {
	t.Parallel()

	store, err := ledger.Open(&ledger.MemPersister{}, 10000, nil)
	require.NoError(t, err)
	r := NewReporter(store)

	now := base
	snap, err := r.CaptureDaily(now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", snap.Date)
	assert.Equal(t, 10000.0, snap.Equity)
	assert.Zero(t, snap.DayPnL)

	// Capturing the same day again overwrites, length stays 1.
	_, err = r.CaptureDaily(now.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Len(t, store.Snapshots(), 1)

	// A new day appends.
	_, err = r.CaptureDaily(now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, store.Snapshots(), 2)
}

func TestReporterReportFormat(t *testing.T) {
	t.Parallel()

	store, err := ledger.Open(&ledger.MemPersister{}, 10000, nil)
	require.NoError(t, err)

	out := NewReporter(store).Report(base).Format()
	assert.Contains(t, out, "win rate")
	assert.Contains(t, out, "not computed")
}
