package market

import (
	"fmt"
	"time"
)

// Direction is the side of a funding position. A SHORT receives the
// fixed entry rate and pays floating; a LONG is the reverse.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Strategy tags the signal family that produced an alert. Closed set so
// per-strategy metric grouping cannot fork on typos.
type Strategy string

const (
	StrategyZScore     Strategy = "funding_zscore"
	StrategyImplied    Strategy = "implied_spread"
	StrategyMeanRevert Strategy = "mean_revert"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyZScore, StrategyImplied, StrategyMeanRevert:
		return true
	}
	return false
}

// Alert is an entry signal produced by the alerting collaborator. The
// engine consumes it once on Open and does not persist it.
type Alert struct {
	Strategy  Strategy
	Symbol    Symbol
	Direction Direction

	// Rates are annualized fractions (0.15 == 15% APR).
	CurrentRate float64
	ImpliedRate float64

	// Deviation is the z-score of CurrentRate against the historical
	// baseline at signal time.
	Deviation float64
	Mean      float64
	StdDev    float64
	Spread    float64

	HoldDays float64
	Time     time.Time
}

// Validate rejects alerts the engine cannot act on.
func (a Alert) Validate() error {
	if !a.Symbol.Known() {
		return fmt.Errorf("unknown symbol: %s", a.Symbol)
	}
	if !a.Direction.Valid() {
		return fmt.Errorf("invalid direction: %q", a.Direction)
	}
	if !a.Strategy.Valid() {
		return fmt.Errorf("invalid strategy: %q", a.Strategy)
	}
	if a.HoldDays <= 0 {
		return fmt.Errorf("hold days must be positive, got %v", a.HoldDays)
	}
	return nil
}
