package market

import (
	"math"
	"sync"
)

// RollingBaseline is a streaming per-symbol mean/stddev accumulator.
// Feed it observed rates; once a symbol has a full window it serves as
// a BaselineSource for deviation scoring.
type RollingBaseline struct {
	mu     sync.Mutex
	period int
	rates  map[Symbol][]float64
}

// NewRollingBaseline creates a baseline accumulator with the given
// window length (number of observations per symbol).
func NewRollingBaseline(period int) *RollingBaseline {
	return &RollingBaseline{
		period: period,
		rates:  make(map[Symbol][]float64),
	}
}

// Update records one observed rate for the symbol, discarding the
// oldest observation once the window is full.
func (r *RollingBaseline) Update(symbol Symbol, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := append(r.rates[symbol], rate)
	if len(w) > r.period {
		w = w[1:]
	}
	r.rates[symbol] = w
}

// Ready reports whether the symbol has a full window.
func (r *RollingBaseline) Ready(symbol Symbol) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rates[symbol]) >= r.period
}

// Baseline implements BaselineSource. ok is false until the window for
// the symbol is full.
func (r *RollingBaseline) Baseline(symbol Symbol) (Baseline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.rates[symbol]
	if len(w) < r.period {
		return Baseline{}, false
	}

	var sum float64
	for _, v := range w {
		sum += v
	}
	mean := sum / float64(len(w))

	var ss float64
	for _, v := range w {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(w)))

	return Baseline{Mean: mean, StdDev: std}, true
}

// Reset drops all accumulated observations.
func (r *RollingBaseline) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = make(map[Symbol][]float64)
}
