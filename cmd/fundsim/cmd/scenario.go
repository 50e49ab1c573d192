package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fundsim/engine"
	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/market"
	"github.com/rustyeddy/fundsim/metrics"
)

// Scenario is a scripted sequence of funding-rate events replayed
// against the engine. Steps execute in order; each step may publish
// rates, advance the clock (which runs a tick), fire an alert, force a
// close, or capture a daily snapshot.
type Scenario struct {
	Start          string         `json:"start" yaml:"start"`
	BaselinePeriod int            `json:"baseline_period" yaml:"baseline_period"`
	Steps          []ScenarioStep `json:"steps" yaml:"steps"`
}

type ScenarioStep struct {
	Rates    map[string]float64 `json:"rates,omitempty" yaml:"rates,omitempty"`
	Advance  string             `json:"advance,omitempty" yaml:"advance,omitempty"`
	Alert    *ScenarioAlert     `json:"alert,omitempty" yaml:"alert,omitempty"`
	Size     float64            `json:"size,omitempty" yaml:"size,omitempty"`
	Close    string             `json:"close,omitempty" yaml:"close,omitempty"`
	Snapshot bool               `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

type ScenarioAlert struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	Strategy    string  `json:"strategy" yaml:"strategy"`
	Direction   string  `json:"direction" yaml:"direction"`
	CurrentRate float64 `json:"current_rate" yaml:"current_rate"`
	ImpliedRate float64 `json:"implied_rate" yaml:"implied_rate"`
	Deviation   float64 `json:"deviation" yaml:"deviation"`
	Mean        float64 `json:"mean" yaml:"mean"`
	StdDev      float64 `json:"std_dev" yaml:"std_dev"`
	HoldDays    float64 `json:"hold_days" yaml:"hold_days"`
}

// LoadScenario parses a scenario file, trying YAML first and falling
// back to JSON.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
			return nil, fmt.Errorf("parse scenario (yaml: %v, json: %v)", err, jsonErr)
		}
	}

	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario has no steps")
	}
	return &s, nil
}

func (s *Scenario) StartTime() (time.Time, error) {
	if s.Start == "" {
		return time.Now().UTC().Truncate(time.Hour), nil
	}
	return time.Parse(time.RFC3339, s.Start)
}

func (a *ScenarioAlert) toAlert(now time.Time) market.Alert {
	return market.Alert{
		Strategy:    market.Strategy(a.Strategy),
		Symbol:      market.Symbol(a.Symbol),
		Direction:   market.Direction(a.Direction),
		CurrentRate: a.CurrentRate,
		ImpliedRate: a.ImpliedRate,
		Deviation:   a.Deviation,
		Mean:        a.Mean,
		StdDev:      a.StdDev,
		Spread:      a.CurrentRate - a.ImpliedRate,
		HoldDays:    a.HoldDays,
		Time:        now,
	}
}

// scenarioRunner drives an engine through a scenario with a simulated
// clock. The rate table is only mutated between ticks, so concurrent
// fetches during a tick see a stable view.
type scenarioRunner struct {
	eng       *engine.Engine
	baselines *market.RollingBaseline
	rates     map[market.Symbol]float64
	now       time.Time
}

func newScenarioRunner(s *Scenario, start time.Time) *scenarioRunner {
	period := s.BaselinePeriod
	if period <= 0 {
		period = 72
	}
	return &scenarioRunner{
		baselines: market.NewRollingBaseline(period),
		rates:     make(map[market.Symbol]float64),
		now:       start,
	}
}

func (r *scenarioRunner) FetchRate(ctx context.Context, sym market.Symbol) (float64, bool) {
	rate, ok := r.rates[sym]
	return rate, ok
}

func (r *scenarioRunner) Run(ctx context.Context, s *Scenario) error {
	for i, step := range s.Steps {
		if err := r.runStep(ctx, i, step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (r *scenarioRunner) runStep(ctx context.Context, i int, step ScenarioStep) error {
	for sym, rate := range step.Rates {
		s := market.Symbol(sym)
		r.rates[s] = rate
		r.baselines.Update(s, rate)
	}

	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("invalid advance %q: %w", step.Advance, err)
		}
		r.now = r.now.Add(d)

		report, err := r.eng.Tick(ctx, r.now)
		if err != nil {
			return fmt.Errorf("tick: %w", err)
		}
		fmt.Printf("[%s] tick: %d open, %d marked, %d closed, %d skipped\n",
			r.now.Format(time.RFC3339), report.Open, report.Marked, report.Closed, report.Skipped)
	}

	if step.Alert != nil {
		trade, reason, err := r.eng.Open(step.Alert.toAlert(r.now), step.Size)
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		if trade == nil {
			fmt.Printf("[%s] alert %s rejected: %s\n", r.now.Format(time.RFC3339), step.Alert.Symbol, reason)
		} else {
			fmt.Printf("[%s] opened %s %s %s: notional $%.2f at %.4f (%.1fx)\n",
				r.now.Format(time.RFC3339), trade.ID, trade.Direction, trade.Symbol,
				trade.Notional, trade.EntryRate, trade.Leverage)
		}
	}

	if step.Close != "" {
		if err := r.closeSymbol(market.Symbol(step.Close)); err != nil {
			return err
		}
	}

	if step.Snapshot {
		snap, err := r.captureSnapshot()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Printf("[%s] snapshot %s: equity $%.2f, %d open\n",
			r.now.Format(time.RFC3339), snap.Date, snap.Equity, snap.OpenPositions)
	}

	return nil
}

func (r *scenarioRunner) captureSnapshot() (ledger.DailySnapshot, error) {
	return metrics.NewReporter(r.eng.Store()).CaptureDaily(r.now)
}

func (r *scenarioRunner) closeSymbol(sym market.Symbol) error {
	for _, t := range r.eng.Store().OpenTrades() {
		if t.Symbol != sym {
			continue
		}
		rate, ok := r.rates[sym]
		if !ok {
			rate = t.EntryRate
		}
		var z float64
		if b, ok := r.baselines.Baseline(sym); ok {
			z = b.ZScore(rate)
		}
		closed, err := r.eng.Close(t.ID, rate, z, ledger.ExitManual, r.now)
		if err != nil {
			return fmt.Errorf("close %s: %w", t.ID, err)
		}
		fmt.Printf("[%s] closed %s %s: net $%.2f\n",
			r.now.Format(time.RFC3339), closed.ID, closed.Symbol, *closed.RealizedPnL)
	}
	return nil
}
