// Package leverage maps signal strength and account performance to a
// position leverage multiplier.
package leverage

// Strategy selects how leverage is derived.
type Strategy string

const (
	// Fixed always returns the configured leverage.
	Fixed Strategy = "fixed"
	// SignalStrength steps leverage up with the absolute deviation score.
	SignalStrength Strategy = "signal_strength"
	// ProfitStack scales a 2x base by how the account is performing
	// against its starting capital.
	ProfitStack Strategy = "profit_stack"
	// Combined applies the profit-stack multiplier to the
	// signal-strength result.
	Combined Strategy = "combined"
)

type Config struct {
	Strategy Strategy
	Fixed    float64
	Max      float64
}

// Compute returns the leverage for a new position, clamped to
// [1, cfg.Max]. Pure; an unknown strategy yields 1x rather than an
// error so a misconfigured selector degrades to unlevered trading.
func Compute(cfg Config, deviation, equity, startingEquity float64) float64 {
	var lev float64

	switch cfg.Strategy {
	case Fixed:
		lev = cfg.Fixed
	case SignalStrength:
		lev = bySignal(deviation)
	case ProfitStack:
		lev = 2.0 * byProfit(equity, startingEquity)
	case Combined:
		lev = bySignal(deviation) * byProfit(equity, startingEquity)
	default:
		lev = 1
	}

	return clamp(lev, cfg.Max)
}

func bySignal(deviation float64) float64 {
	z := deviation
	if z < 0 {
		z = -z
	}
	switch {
	case z >= 3.0:
		return 6
	case z >= 2.5:
		return 4
	case z >= 2.0:
		return 2
	default:
		return 1
	}
}

func byProfit(equity, startingEquity float64) float64 {
	if startingEquity <= 0 {
		return 1
	}
	ratio := equity / startingEquity
	switch {
	case ratio >= 1.20:
		return 1.5
	case ratio >= 1.10:
		return 1.25
	case ratio <= 0.90:
		return 0.5
	default:
		return 1
	}
}

func clamp(lev, max float64) float64 {
	if max >= 1 && lev > max {
		lev = max
	}
	if lev < 1 {
		lev = 1
	}
	return lev
}
