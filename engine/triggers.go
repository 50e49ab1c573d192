// engine/triggers.go
package engine

import (
	"time"

	"github.com/rustyeddy/fundsim/ledger"
)

func hitStopLoss(t *ledger.Trade, stopLossPct float64) bool {
	if stopLossPct >= 0 || t.Notional <= 0 {
		return false
	}
	return t.UnrealizedPnL/t.Notional <= stopLossPct
}

func hitScheduledExit(t *ledger.Trade, now time.Time) bool {
	return !now.Before(t.ScheduledExit)
}
