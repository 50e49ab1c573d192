package metrics

import (
	"time"

	"github.com/rustyeddy/fundsim/ledger"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// EdgeDecay compares the last 30 days of closed trades with the prior
// 30-60 day window.
type EdgeDecay struct {
	RecentTrades  int
	PriorTrades   int
	RecentWinRate float64
	PriorWinRate  float64
	WinRateTrend  Trend
	RecentSharpe  float64
	PriorSharpe   float64
	SharpeTrend   Trend
}

// Meta holds the monthly-cadence strategy viability numbers.
type Meta struct {
	DaysActive int
	EdgeDecay  EdgeDecay

	// BTCCorrelation is not computed: it needs an external BTC price
	// feed this engine does not have. Always 0.
	BTCCorrelation float64
	// AvgSlippage is not computed: paper fills have no real order book
	// to slip against. Always 0.
	AvgSlippage float64

	// CapitalEfficiency is total realized PnL over total notional ever
	// opened.
	CapitalEfficiency float64
}

// ComputeMeta derives the meta metrics at now.
func ComputeMeta(trades []ledger.Trade, now time.Time) Meta {
	var m Meta
	if len(trades) == 0 {
		return m
	}

	first := trades[0].EntryTime
	for _, t := range trades {
		if t.EntryTime.Before(first) {
			first = t.EntryTime
		}
	}
	m.DaysActive = int(now.Sub(first).Hours() / 24)

	recent := closedWithin(trades, now.AddDate(0, 0, -30), now)
	prior := closedWithin(trades, now.AddDate(0, 0, -60), now.AddDate(0, 0, -30))

	m.EdgeDecay = EdgeDecay{
		RecentTrades:  len(recent),
		PriorTrades:   len(prior),
		RecentWinRate: winRate(recent),
		PriorWinRate:  winRate(prior),
		RecentSharpe:  dailySharpe(recent),
		PriorSharpe:   dailySharpe(prior),
	}
	m.EdgeDecay.WinRateTrend = classify(m.EdgeDecay.RecentWinRate - m.EdgeDecay.PriorWinRate)
	m.EdgeDecay.SharpeTrend = classify(m.EdgeDecay.RecentSharpe - m.EdgeDecay.PriorSharpe)

	var pnlSum, notionalSum float64
	for _, t := range trades {
		notionalSum += t.Notional
		if t.RealizedPnL != nil {
			pnlSum += *t.RealizedPnL
		}
	}
	if notionalSum > 0 {
		m.CapitalEfficiency = pnlSum / notionalSum
	}
	return m
}

// classify maps a metric delta to a trend with a +/-5 point dead band.
func classify(delta float64) Trend {
	switch {
	case delta > 5:
		return TrendImproving
	case delta < -5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func winRate(closed []ledger.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	wins := 0
	for _, t := range closed {
		if t.Won() {
			wins++
		}
	}
	return 100 * float64(wins) / float64(len(closed))
}
