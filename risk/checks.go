package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/fundsim/ledger"
	"github.com/rustyeddy/fundsim/market"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of a pre-open risk evaluation. Checks run in
// a fixed order and stop at the first failure, so Violations holds at
// most one entry.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

// Reason returns the human-readable rejection reason, or "" when the
// open is allowed. Callers surface it verbatim.
func (d Decision) Reason() string {
	if len(d.Violations) == 0 {
		return ""
	}
	return d.Violations[0].Msg
}

func deny(code, msg string) Decision {
	return Decision{Violations: []Violation{{Code: code, Msg: msg}}}
}

// Evaluate decides whether a new position on symbol may open. Pure and
// read-only over the account state and trade history.
func Evaluate(
	p Policy,
	acct ledger.AccountState,
	trades []ledger.Trade,
	symbol market.Symbol,
	now time.Time,
) Decision {
	// Concurrent-position cap.
	if len(acct.OpenPositions) >= p.MaxOpenPositions {
		return deny("TOO_MANY_OPEN_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d",
				len(acct.OpenPositions), p.MaxOpenPositions))
	}

	// One position per instrument.
	var openNotional float64
	for i := range trades {
		t := &trades[i]
		if !t.IsOpen() {
			continue
		}
		if t.Symbol == symbol {
			return deny("POSITION_EXISTS",
				fmt.Sprintf("position already open for %s (trade %s)", symbol, t.ID))
		}
		openNotional += t.Notional
	}

	// Total exposure cap.
	maxNotional := acct.Equity * p.MaxExposurePct
	if openNotional >= maxNotional {
		return deny("EXPOSURE_CAP",
			fmt.Sprintf("open notional %.2f >= limit %.2f (%.1fx equity)",
				openNotional, maxNotional, p.MaxExposurePct))
	}

	// Drawdown circuit breaker: trading pauses account-wide.
	if dd := acct.Drawdown(); dd >= math.Abs(p.MaxDrawdownPct) {
		return deny("DRAWDOWN_HALT",
			fmt.Sprintf("drawdown %.1f%% >= limit %.1f%%, trading paused",
				100*dd, 100*math.Abs(p.MaxDrawdownPct)))
	}

	// Cooldown after a losing streak on this instrument.
	if v, bad := cooldownViolation(p, trades, symbol, now); bad {
		return Decision{Violations: []Violation{v}}
	}

	return Decision{Allowed: true}
}

// cooldownViolation checks the most recent ConsecutiveLossLimit closed
// trades for symbol. With fewer closed trades than the limit the check
// is skipped, not satisfied.
func cooldownViolation(p Policy, trades []ledger.Trade, symbol market.Symbol, now time.Time) (Violation, bool) {
	if p.ConsecutiveLossLimit <= 0 {
		return Violation{}, false
	}

	recent := recentClosed(trades, symbol, p.ConsecutiveLossLimit)
	if len(recent) < p.ConsecutiveLossLimit {
		return Violation{}, false
	}
	for _, t := range recent {
		if t.RealizedPnL == nil || *t.RealizedPnL >= 0 {
			return Violation{}, false
		}
	}

	last := recent[0] // most recent
	cooldownEnd := last.ExitTime.Add(time.Duration(p.CooldownDays * 24 * float64(time.Hour)))
	if now.Before(cooldownEnd) {
		return Violation{
			Code: "COOLDOWN",
			Msg: fmt.Sprintf("%d consecutive losses on %s, cooling down until %s",
				p.ConsecutiveLossLimit, symbol, cooldownEnd.Format("2006-01-02 15:04 MST")),
		}, true
	}
	return Violation{}, false
}

// recentClosed returns up to n closed trades for symbol, most recent
// exit first.
func recentClosed(trades []ledger.Trade, symbol market.Symbol, n int) []ledger.Trade {
	var closed []ledger.Trade
	for _, t := range trades {
		if t.Symbol == symbol && t.Status == ledger.StatusClosed && t.ExitTime != nil {
			closed = append(closed, t)
		}
	}
	// Ledger is append-only, closes can interleave; order by exit time.
	for i := 1; i < len(closed); i++ {
		for j := i; j > 0 && closed[j].ExitTime.After(*closed[j-1].ExitTime); j-- {
			closed[j], closed[j-1] = closed[j-1], closed[j]
		}
	}
	if len(closed) > n {
		closed = closed[:n]
	}
	return closed
}
