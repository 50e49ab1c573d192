package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/market"
)

// TickReport summarizes one pass over the open trades.
type TickReport struct {
	Open    int
	Marked  int
	Closed  int
	Skipped int // no rate available this cycle
}

// Tick marks every open trade to the latest rate and closes those
// whose exit triggers fire. Rate fetches fan out concurrently with a
// bounded worker count; a failed fetch skips that instrument for this
// cycle only. Stop-loss is evaluated before the scheduled exit so
// capital preservation wins a tie.
func (e *Engine) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	open := e.store.OpenTrades()
	report := TickReport{Open: len(open)}
	if len(open) == 0 {
		return report, nil
	}
	if e.cfg.Rates == nil {
		report.Skipped = len(open)
		return report, errors.New("no rate source configured")
	}

	rates := e.fetchRates(ctx, uniqueSymbols(open))

	var errs []error
	for _, t := range open {
		rate, ok := rates[t.Symbol]
		if !ok {
			e.log.Debug("no rate this cycle, skipping", "symbol", t.Symbol, "trade", t.ID)
			report.Skipped++
			continue
		}

		if err := e.Mark(t.ID, rate, now); err != nil {
			errs = append(errs, err)
			continue
		}
		report.Marked++

		marked, ok := e.store.Trade(t.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("trade %q vanished during tick", t.ID))
			continue
		}

		var reason ledger.ExitReason
		switch {
		case hitStopLoss(&marked, e.cfg.Risk.StopLossPct):
			reason = ledger.ExitStopLoss
		case hitScheduledExit(&marked, now):
			reason = ledger.ExitTimeBased
		default:
			continue
		}

		if _, err := e.Close(t.ID, rate, e.exitZScore(t.Symbol, rate), reason, now); err != nil {
			errs = append(errs, err)
			continue
		}
		report.Closed++
	}

	return report, errors.Join(errs...)
}

// fetchRates collects the latest rate per symbol, at most
// MaxParallelFetch fetches in flight. Symbols whose fetch fails are
// absent from the result.
func (e *Engine) fetchRates(ctx context.Context, symbols []market.Symbol) map[market.Symbol]float64 {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		rates = make(map[market.Symbol]float64, len(symbols))
		sem   = make(chan struct{}, e.cfg.MaxParallelFetch)
	)

	for _, sym := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(sym market.Symbol) {
			defer wg.Done()
			defer func() { <-sem }()

			rate, ok := e.cfg.Rates.FetchRate(ctx, sym)
			if !ok {
				return
			}
			mu.Lock()
			rates[sym] = rate
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return rates
}

func (e *Engine) exitZScore(sym market.Symbol, rate float64) float64 {
	if e.cfg.Baselines == nil {
		return 0
	}
	b, ok := e.cfg.Baselines.Baseline(sym)
	if !ok {
		return 0
	}
	return b.ZScore(rate)
}

func uniqueSymbols(trades []ledger.Trade) []market.Symbol {
	seen := make(map[market.Symbol]struct{}, len(trades))
	var out []market.Symbol
	for _, t := range trades {
		if _, ok := seen[t.Symbol]; ok {
			continue
		}
		seen[t.Symbol] = struct{}{}
		out = append(out, t.Symbol)
	}
	return out
}
