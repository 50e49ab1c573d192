// Package metrics derives performance statistics from the trade
// ledger. Everything here is read-only: it never mutates trades or
// account state.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/fundsim/ledger"
)

// Primary holds the daily-cadence strategy health numbers.
type Primary struct {
	ClosedTrades    int
	WinRate         float64 // percent of closed trades with positive PnL
	AvgWinLossRatio float64
	Sharpe          float64 // annualized, over daily aggregated realized PnL
	MaxDrawdown     float64 // percent decline from peak, replayed from the ledger
}

// ComputePrimary derives the primary metrics from closed trades.
func ComputePrimary(trades []ledger.Trade, startingCapital float64) Primary {
	closed := closedByExitTime(trades)
	p := Primary{ClosedTrades: len(closed)}
	if len(closed) == 0 {
		return p
	}

	var wins, losses int
	var winSum, lossSum float64
	for _, t := range closed {
		pnl := *t.RealizedPnL
		if pnl > 0 {
			wins++
			winSum += pnl
		} else {
			losses++
			lossSum += pnl
		}
	}
	p.WinRate = 100 * float64(wins) / float64(len(closed))

	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 1.0 // no losses yet: avoid dividing by zero
	if losses > 0 {
		avgLoss = math.Abs(lossSum / float64(losses))
	}
	p.AvgWinLossRatio = avgWin / avgLoss

	p.Sharpe = dailySharpe(closed)
	p.MaxDrawdown = replayDrawdown(closed, startingCapital)
	return p
}

// dailySharpe annualizes the mean/stddev of per-day realized PnL with
// a sqrt(365) factor and a zero risk-free rate. Fewer than two
// distinct PnL days is not enough signal and yields 0.
func dailySharpe(closed []ledger.Trade) float64 {
	byDay := make(map[string]float64)
	for _, t := range closed {
		byDay[t.ExitTime.UTC().Format("2006-01-02")] += *t.RealizedPnL
	}
	if len(byDay) < 2 {
		return 0
	}

	var sum float64
	for _, v := range byDay {
		sum += v
	}
	mean := sum / float64(len(byDay))

	var ss float64
	for _, v := range byDay {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(byDay)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(365)
}

// replayDrawdown walks closed trades in exit order, accumulating
// equity from startingCapital and tracking the peak. Returns the
// largest peak-to-trough decline as a percentage.
func replayDrawdown(closed []ledger.Trade, startingCapital float64) float64 {
	equity := startingCapital
	peak := startingCapital
	var maxDD float64

	for _, t := range closed {
		equity += *t.RealizedPnL
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return 100 * maxDD
}

// closedByExitTime filters to consistent closed trades and sorts them
// by exit time ascending.
func closedByExitTime(trades []ledger.Trade) []ledger.Trade {
	var closed []ledger.Trade
	for _, t := range trades {
		if t.Status == ledger.StatusClosed && t.ExitTime != nil && t.RealizedPnL != nil {
			closed = append(closed, t)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].ExitTime.Before(*closed[j].ExitTime)
	})
	return closed
}

func closedWithin(trades []ledger.Trade, start, end time.Time) []ledger.Trade {
	var out []ledger.Trade
	for _, t := range closedByExitTime(trades) {
		if !t.ExitTime.Before(start) && t.ExitTime.Before(end) {
			out = append(out, t)
		}
	}
	return out
}
