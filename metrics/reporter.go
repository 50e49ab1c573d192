package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fundsim/ledger"
)

// Reporter reads a ledger store and produces metric snapshots. It
// holds no state of its own.
type Reporter struct {
	store *ledger.Store
}

func NewReporter(store *ledger.Store) *Reporter {
	return &Reporter{store: store}
}

func (r *Reporter) Primary() Primary {
	return ComputePrimary(r.store.Trades(), r.store.Account().StartingCapital)
}

func (r *Reporter) Secondary() Secondary {
	return ComputeSecondary(r.store.Trades(), r.store.Account().AlertsSeen)
}

func (r *Reporter) Meta(now time.Time) Meta {
	return ComputeMeta(r.store.Trades(), now)
}

// Report bundles all three tiers for display.
type Report struct {
	Primary   Primary
	Secondary Secondary
	Meta      Meta
}

func (r *Reporter) Report(now time.Time) Report {
	return Report{
		Primary:   r.Primary(),
		Secondary: r.Secondary(),
		Meta:      r.Meta(now),
	}
}

// CaptureDaily records the day's snapshot: equity, realized PnL for
// trades exited on now's calendar date, open position count, and a
// trailing 7-day win rate. Upsert semantics: capturing twice on the
// same date overwrites.
func (r *Reporter) CaptureDaily(now time.Time) (ledger.DailySnapshot, error) {
	trades := r.store.Trades()
	acct := r.store.Account()
	date := now.UTC().Format("2006-01-02")

	var dayPnL float64
	for _, t := range closedByExitTime(trades) {
		if t.ExitTime.UTC().Format("2006-01-02") == date {
			dayPnL += *t.RealizedPnL
		}
	}

	snap := ledger.DailySnapshot{
		Date:          date,
		Equity:        acct.Equity,
		DayPnL:        dayPnL,
		OpenPositions: len(acct.OpenPositions),
		WinRate7d:     winRate(closedWithin(trades, now.AddDate(0, 0, -7), now)),
	}

	if err := r.store.UpsertSnapshot(snap); err != nil {
		return ledger.DailySnapshot{}, err
	}
	return snap, nil
}

// Format renders a report for terminal display.
func (rep Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Primary\n")
	fmt.Fprintf(&b, "  closed trades:   %d\n", rep.Primary.ClosedTrades)
	fmt.Fprintf(&b, "  win rate:        %.1f%%\n", rep.Primary.WinRate)
	fmt.Fprintf(&b, "  avg win/loss:    %.2f\n", rep.Primary.AvgWinLossRatio)
	fmt.Fprintf(&b, "  sharpe (daily):  %.2f\n", rep.Primary.Sharpe)
	fmt.Fprintf(&b, "  max drawdown:    %.1f%%\n", rep.Primary.MaxDrawdown)

	fmt.Fprintf(&b, "Secondary\n")
	fmt.Fprintf(&b, "  signal/trade:    %.2f\n", rep.Secondary.SignalToTradeRatio)
	fmt.Fprintf(&b, "  avg hold:        %.1f days\n", rep.Secondary.AvgHoldDays)
	fmt.Fprintf(&b, "  avg exit z:      %.2f\n", rep.Secondary.AvgExitZScore)
	for sym, g := range rep.Secondary.PnLBySymbol {
		fmt.Fprintf(&b, "  %-14s %d trades, %.0f%% wins, pnl $%.2f\n", sym, g.Trades, g.WinRate, g.PnL)
	}
	for st, g := range rep.Secondary.PnLByStrategy {
		fmt.Fprintf(&b, "  %-14s %d trades, %.0f%% wins, pnl $%.2f\n", st, g.Trades, g.WinRate, g.PnL)
	}

	fmt.Fprintf(&b, "Meta\n")
	fmt.Fprintf(&b, "  days active:     %d\n", rep.Meta.DaysActive)
	fmt.Fprintf(&b, "  win rate trend:  %s (%.1f%% vs %.1f%%)\n",
		rep.Meta.EdgeDecay.WinRateTrend, rep.Meta.EdgeDecay.RecentWinRate, rep.Meta.EdgeDecay.PriorWinRate)
	fmt.Fprintf(&b, "  sharpe trend:    %s (%.2f vs %.2f)\n",
		rep.Meta.EdgeDecay.SharpeTrend, rep.Meta.EdgeDecay.RecentSharpe, rep.Meta.EdgeDecay.PriorSharpe)
	fmt.Fprintf(&b, "  capital eff:     %.4f\n", rep.Meta.CapitalEfficiency)
	fmt.Fprintf(&b, "  btc correlation: not computed\n")
	fmt.Fprintf(&b, "  avg slippage:    not computed\n")

	return b.String()
}
