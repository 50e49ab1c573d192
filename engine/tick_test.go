package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/market"
)

type countingRates struct {
	mu      sync.Mutex
	rates   map[market.Symbol]float64
	fetches map[market.Symbol]int
}

func (r *countingRates) FetchRate(_ context.Context, sym market.Symbol) (float64, bool) {
	r.mu.Lock()
	if r.fetches == nil {
		r.fetches = make(map[market.Symbol]int)
	}
	r.fetches[sym]++
	r.mu.Unlock()

	v, ok := r.rates[sym]
	return v, ok
}

func TestTickMarksOpenTrades(t *testing.T) {
	rates := &countingRates{rates: map[market.Symbol]float64{"BTC-PERP": 0.05}}
	cfg := testConfig()
	cfg.Rates = rates
	e := newTestEngine(t, cfg)

	tr, _, err := e.Open(shortAlert(), 5000)
	require.NoError(t, err)

	report, err := e.Tick(context.Background(), t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TickReport{Open: 1, Marked: 1}, report)

	marked, _ := e.Store().Trade(tr.ID)
	assert.Greater(t, marked.UnrealizedPnL, 0.0)
	assert.Equal(t, ledger.StatusOpen, marked.Status, "one day in, no trigger yet")
}

func TestTickTimeBasedClose(t *testing.T) {
	cfg := testConfig()
	cfg.Rates = &rateTable{rates: map[market.Symbol]float64{"BTC-PERP": 0.05}}
	e := newTestEngine(t, cfg)

	tr, _, err := e.Open(shortAlert(), 5000)
	require.NoError(t, err)

	report, err := e.Tick(context.Background(), t0.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Closed)

	closed, _ := e.Store().Trade(tr.ID)
	assert.Equal(t, ledger.StatusClosed, closed.Status)
	assert.Equal(t, ledger.ExitTimeBased, closed.ExitReason)
}

func TestTickStopLossBeatsScheduledExit(t *testing.T) {
	cfg := testConfig()
	// Floating rate blows out far above the short's fixed entry; at the
	// scheduled exit both triggers are true.
	cfg.Rates = &rateTable{rates: map[market.Symbol]float64{"BTC-PERP": 3.0}}
	e := newTestEngine(t, cfg)

	tr, _, err := e.Open(shortAlert(), 5000)
	require.NoError(t, err)

	report, err := e.Tick(context.Background(), t0.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Closed)

	closed, _ := e.Store().Trade(tr.ID)
	require.Equal(t, ledger.StatusClosed, closed.Status)
	assert.Equal(t, ledger.ExitStopLoss, closed.ExitReason,
		"stop-loss must take precedence over the scheduled exit")
	require.NotNil(t, closed.RealizedPnL)
	assert.Less(t, *closed.RealizedPnL, 0.0)
}

func TestTickSkipsSymbolsWithoutRates(t *testing.T) {
	rates := &countingRates{rates: map[market.Symbol]float64{"ETH-PERP": 0.04}}
	cfg := testConfig()
	cfg.Rates = rates
	e := newTestEngine(t, cfg)

	_, _, err := e.Open(shortAlert(), 1000) // BTC-PERP: no rate available
	require.NoError(t, err)
	a := shortAlert()
	a.Symbol = "ETH-PERP"
	a.CurrentRate = 0.08
	_, _, err = e.Open(a, 1000)
	require.NoError(t, err)

	report, err := e.Tick(context.Background(), t0.Add(time.Hour))
	require.NoError(t, err, "a missing rate is a skip, not a failure")
	assert.Equal(t, TickReport{Open: 2, Marked: 1, Skipped: 1}, report)

	// One fetch per distinct symbol.
	assert.Equal(t, 1, rates.fetches["BTC-PERP"])
	assert.Equal(t, 1, rates.fetches["ETH-PERP"])
}

func TestTickNoOpenTrades(t *testing.T) {
	e := newTestEngine(t, testConfig())

	report, err := e.Tick(context.Background(), t0)
	require.NoError(t, err)
	assert.Equal(t, TickReport{}, report)
}

func TestTickExitZScoreFromBaseline(t *testing.T) {
	rb := market.NewRollingBaseline(2)
	rb.Update("BTC-PERP", 0.04)
	rb.Update("BTC-PERP", 0.06)

	cfg := testConfig()
	cfg.Rates = &rateTable{rates: map[market.Symbol]float64{"BTC-PERP": 0.07}}
	cfg.Baselines = rb
	e := newTestEngine(t, cfg)

	tr, _, err := e.Open(shortAlert(), 1000)
	require.NoError(t, err)

	_, err = e.Tick(context.Background(), t0.Add(7*24*time.Hour))
	require.NoError(t, err)

	closed, _ := e.Store().Trade(tr.ID)
	require.NotNil(t, closed.ExitZScore)
	b, _ := rb.Baseline("BTC-PERP")
	assert.InDelta(t, b.ZScore(0.07), *closed.ExitZScore, 1e-9)
}
