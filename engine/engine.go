// Package engine is the trade lifecycle manager: it opens positions
// behind the risk gate, marks them to the latest funding rate, and
// closes them on schedule, stop-loss, or request.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/fundsim/internal/id"
	"github.com/rustyeddy/fundsim/journal"
	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/leverage"
	"github.com/rustyeddy/fundsim/market"
	"github.com/rustyeddy/fundsim/risk"
)

type Config struct {
	Risk     risk.Policy
	Leverage leverage.Config

	// TakerFeeRate is charged on notional once at open and once at
	// close.
	TakerFeeRate float64

	// DefaultSize is the collateral used when Open is called without a
	// requested size.
	DefaultSize float64

	Rates     market.RateSource
	Baselines market.BaselineSource // optional; exit z-scores degrade to 0

	Journal journal.Journal // optional audit trail
	Logger  *slog.Logger

	// MaxParallelFetch bounds concurrent rate fetches during a tick.
	MaxParallelFetch int

	// Now is the clock; defaults to time.Now. Injected by tests and
	// scenario replays.
	Now func() time.Time
}

type Engine struct {
	mu    sync.Mutex // serializes open/close as one critical section
	store *ledger.Store
	cfg   Config
	log   *slog.Logger
	jrnl  journal.Journal
}

func New(store *ledger.Store, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.MaxParallelFetch <= 0 {
		cfg.MaxParallelFetch = 4
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		log:   cfg.Logger,
		jrnl:  cfg.Journal,
	}
}

func (e *Engine) Store() *ledger.Store { return e.store }

// Open attempts to open a position for the alert. A failed risk check
// is not an error: the returned trade is nil and reason carries the
// rejection, which callers surface verbatim and must not retry.
// requestedSize <= 0 means use the configured default collateral.
func (e *Engine) Open(a market.Alert, requestedSize float64) (*ledger.Trade, string, error) {
	if err := a.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid alert: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.CountAlert(); err != nil {
		// A stale counter skews the signal-to-trade metric but is no
		// reason to drop the trade itself.
		e.log.Warn("alert counter not persisted", "err", err)
	}

	now := a.Time
	if now.IsZero() {
		now = e.cfg.Now()
	}

	acct := e.store.Account()
	trades := e.store.Trades()

	if d := risk.Evaluate(e.cfg.Risk, acct, trades, a.Symbol, now); !d.Allowed {
		e.log.Info("open rejected", "symbol", a.Symbol, "reason", d.Reason())
		return nil, d.Reason(), nil
	}

	lev := leverage.Compute(e.cfg.Leverage, a.Deviation, acct.Equity, acct.StartingCapital)
	if e.cfg.Risk.MaxLeverage >= 1 && lev > e.cfg.Risk.MaxLeverage {
		lev = e.cfg.Risk.MaxLeverage
	}

	collateral := requestedSize
	if collateral <= 0 {
		collateral = e.cfg.DefaultSize
	}
	if limit := acct.Equity * e.cfg.Risk.MaxPositionPct; collateral > limit {
		collateral = limit
	}
	notional := collateral * lev
	entryFee := notional * e.cfg.TakerFeeRate

	t := ledger.Trade{
		ID:            id.New(),
		Symbol:        a.Symbol,
		Direction:     a.Direction,
		Strategy:      a.Strategy,
		Status:        ledger.StatusOpen,
		EntryTime:     now,
		EntryRate:     a.CurrentRate,
		ImpliedRate:   a.ImpliedRate,
		EntryZScore:   a.Deviation,
		Notional:      notional,
		Leverage:      lev,
		HoldDays:      a.HoldDays,
		ScheduledExit: now.Add(time.Duration(a.HoldDays * 24 * float64(time.Hour))),
		Fees:          entryFee,
	}

	if err := e.store.AppendTrade(t); err != nil {
		return nil, "", fmt.Errorf("open %s: %w", a.Symbol, err)
	}

	e.log.Info("opened position",
		"trade", t.ID, "symbol", t.Symbol, "direction", t.Direction,
		"notional", t.Notional, "leverage", t.Leverage,
		"entry_rate", t.EntryRate, "scheduled_exit", t.ScheduledExit)
	return &t, "", nil
}

// Mark refreshes the live PnL estimate of an open trade from the
// latest observed rate. Account state is untouched; repeated calls
// with the same inputs converge to the same value.
func (e *Engine) Mark(tradeID string, observedRate float64, now time.Time) error {
	t, ok := e.store.Trade(tradeID)
	if !ok {
		return fmt.Errorf("mark: trade %q not found", tradeID)
	}
	if !t.IsOpen() {
		return fmt.Errorf("mark: trade %q is closed", tradeID)
	}

	pnl := MarkPnL(t.Direction, t.EntryRate, observedRate, t.Notional, t.HoursHeld(now))
	if err := e.store.SetUnrealized(tradeID, pnl); err != nil {
		return fmt.Errorf("mark %q: %w", tradeID, err)
	}
	return nil
}

// Close finalizes an open trade: gross PnL accrued from entry to now,
// minus the entry fee already booked and a symmetric exit fee, becomes
// the realized PnL credited to equity.
func (e *Engine) Close(tradeID string, exitRate, exitZScore float64, reason ledger.ExitReason, now time.Time) (*ledger.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.store.Trade(tradeID)
	if !ok {
		return nil, fmt.Errorf("close: trade %q not found", tradeID)
	}
	if !t.IsOpen() {
		return nil, fmt.Errorf("close: trade %q is already closed", tradeID)
	}

	gross := MarkPnL(t.Direction, t.EntryRate, exitRate, t.Notional, t.HoursHeld(now))
	exitFee := t.Notional * e.cfg.TakerFeeRate
	net := gross - (t.Fees + exitFee)

	closed, err := e.store.CloseTrade(tradeID, ledger.CloseRecord{
		Time:    now,
		Rate:    exitRate,
		ZScore:  exitZScore,
		Reason:  reason,
		ExitFee: exitFee,
		NetPnL:  net,
	})
	if err != nil {
		return nil, fmt.Errorf("close %q: %w", tradeID, err)
	}

	e.recordClose(closed)

	e.log.Info("closed position",
		"trade", closed.ID, "symbol", closed.Symbol, "reason", reason,
		"gross_pnl", gross, "net_pnl", net, "fees", closed.Fees)
	return &closed, nil
}

// recordClose writes the audit trail. Journal failures are logged, not
// propagated: the ledger already holds the truth.
func (e *Engine) recordClose(t ledger.Trade) {
	acct := e.store.Account()

	rec := journal.TradeRecord{
		TradeID:     t.ID,
		Symbol:      t.Symbol.String(),
		Direction:   string(t.Direction),
		Strategy:    string(t.Strategy),
		EntryRate:   t.EntryRate,
		Notional:    t.Notional,
		Leverage:    t.Leverage,
		OpenTime:    t.EntryTime,
		Fees:        t.Fees,
		Reason:      string(t.ExitReason),
	}
	if t.ExitRate != nil {
		rec.ExitRate = *t.ExitRate
	}
	if t.ExitTime != nil {
		rec.CloseTime = *t.ExitTime
	}
	if t.RealizedPnL != nil {
		rec.RealizedPnL = *t.RealizedPnL
	}

	if err := e.jrnl.RecordTrade(rec); err != nil {
		e.log.Warn("journal trade record failed", "trade", t.ID, "err", err)
	}
	if err := e.jrnl.RecordEquity(journal.EquitySnapshot{
		Time:          rec.CloseTime,
		Equity:        acct.Equity,
		PeakEquity:    acct.PeakEquity,
		OpenPositions: len(acct.OpenPositions),
		RealizedPnL:   rec.RealizedPnL,
	}); err != nil {
		e.log.Warn("journal equity record failed", "trade", t.ID, "err", err)
	}
}
