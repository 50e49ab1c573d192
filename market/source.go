package market

import "context"

// RateSource supplies the latest observed floating rate for a symbol.
// ok=false means no data this cycle; callers skip the symbol and retry
// on the next tick rather than failing the batch.
type RateSource interface {
	FetchRate(ctx context.Context, symbol Symbol) (rate float64, ok bool)
}

// RateFunc adapts a plain function to a RateSource.
type RateFunc func(ctx context.Context, symbol Symbol) (float64, bool)

func (f RateFunc) FetchRate(ctx context.Context, symbol Symbol) (float64, bool) {
	return f(ctx, symbol)
}

// Baseline is the historical mean/stddev of a symbol's funding rate.
type Baseline struct {
	Mean   float64
	StdDev float64
}

// ZScore normalizes a rate against the baseline. A missing or
// degenerate baseline degrades to 0 rather than dividing by zero.
func (b Baseline) ZScore(rate float64) float64 {
	if b.StdDev <= 0 {
		return 0
	}
	return (rate - b.Mean) / b.StdDev
}

// BaselineSource supplies historical baselines. ok=false means no
// baseline is available; consumers report a zero deviation score.
type BaselineSource interface {
	Baseline(symbol Symbol) (Baseline, bool)
}
