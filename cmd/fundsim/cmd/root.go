package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fundsim",
	Short: "A paper-trading engine for funding-rate strategies",
	Long: `Fundsim simulates perpetual-futures funding-rate trades without
touching an exchange.

It provides tools for:
  - Replaying scripted funding-rate scenarios against the engine
  - Risk-gated position entry with signal-driven leverage
  - Hourly funding accrual and stop-loss / time-based exits
  - A crash-safe trade ledger with daily equity snapshots
  - Performance metrics: win rate, Sharpe, drawdown, edge decay
  - SQLite and CSV trade journals`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
