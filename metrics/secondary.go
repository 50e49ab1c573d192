package metrics

import (
	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/market"
)

// GroupStats aggregates closed-trade performance for one instrument or
// strategy.
type GroupStats struct {
	Trades  int
	Wins    int
	WinRate float64 // percent
	PnL     float64
}

// Secondary holds the weekly-cadence conversion and attribution
// numbers.
type Secondary struct {
	SignalToTradeRatio float64
	AvgHoldDays        float64
	PnLBySymbol        map[market.Symbol]GroupStats
	PnLByStrategy      map[market.Strategy]GroupStats
	AvgExitZScore      float64
}

// ComputeSecondary derives the secondary metrics. alertsSeen is the
// total number of alerts the engine has consumed; with none logged the
// ratio defaults to 1 rather than implying zero conversion.
func ComputeSecondary(trades []ledger.Trade, alertsSeen int) Secondary {
	s := Secondary{
		SignalToTradeRatio: 1,
		PnLBySymbol:        make(map[market.Symbol]GroupStats),
		PnLByStrategy:      make(map[market.Strategy]GroupStats),
	}
	if alertsSeen > 0 {
		s.SignalToTradeRatio = float64(len(trades)) / float64(alertsSeen)
	}

	closed := closedByExitTime(trades)
	if len(closed) == 0 {
		return s
	}

	var holdSum float64
	var zSum float64
	var zCount int
	for _, t := range closed {
		holdSum += t.ExitTime.Sub(t.EntryTime).Hours() / 24

		if t.ExitZScore != nil {
			zSum += *t.ExitZScore
			zCount++
		}

		sym := s.PnLBySymbol[t.Symbol]
		sym.Trades++
		if t.Won() {
			sym.Wins++
		}
		sym.PnL += *t.RealizedPnL
		sym.WinRate = 100 * float64(sym.Wins) / float64(sym.Trades)
		s.PnLBySymbol[t.Symbol] = sym

		st := s.PnLByStrategy[t.Strategy]
		st.Trades++
		if t.Won() {
			st.Wins++
		}
		st.PnL += *t.RealizedPnL
		st.WinRate = 100 * float64(st.Wins) / float64(st.Trades)
		s.PnLByStrategy[t.Strategy] = st
	}

	s.AvgHoldDays = holdSum / float64(len(closed))
	if zCount > 0 {
		s.AvgExitZScore = zSum / float64(zCount)
	}
	return s
}
