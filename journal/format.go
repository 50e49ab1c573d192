package journal

import (
	"fmt"
	"strings"
)

// FormatTrade renders one trade record for terminal display.
func FormatTrade(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trade %s  %s %s (%s)\n", t.TradeID, t.Direction, t.Symbol, t.Strategy)
	fmt.Fprintf(&b, "  entry rate: %.4f  exit rate: %.4f\n", t.EntryRate, t.ExitRate)
	fmt.Fprintf(&b, "  notional: $%.2f  leverage: %.1fx\n", t.Notional, t.Leverage)
	fmt.Fprintf(&b, "  opened: %s\n", t.OpenTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  closed: %s (%s)\n", t.CloseTime.Format("2006-01-02 15:04:05"), t.Reason)
	fmt.Fprintf(&b, "  pnl: $%.2f  fees: $%.2f\n", t.RealizedPnL, t.Fees)
	return b.String()
}

// FormatTrades renders a list of trade records with a summary line.
func FormatTrades(recs []TradeRecord) string {
	if len(recs) == 0 {
		return "no trades"
	}

	var b strings.Builder
	var total float64
	wins := 0
	for _, t := range recs {
		fmt.Fprintf(&b, "%-27s %-5s %-10s %10.2f  %s\n",
			t.TradeID, t.Direction, t.Symbol, t.RealizedPnL, t.Reason)
		total += t.RealizedPnL
		if t.RealizedPnL > 0 {
			wins++
		}
	}
	fmt.Fprintf(&b, "%d trades, %d wins, total pnl $%.2f\n", len(recs), wins, total)
	return b.String()
}
