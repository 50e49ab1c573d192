package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fundsim/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print a performance report from the trade ledger",
	Long: `Compute and print primary, secondary, and meta performance metrics
from the trade ledger.

Example:
  fundsim metrics -f fundsim.yaml
  fundsim metrics --capture`,
	RunE: runMetrics,
}

var (
	metricsConfigPath string
	metricsCapture    bool
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVarP(&metricsConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	metricsCmd.Flags().BoolVar(&metricsCapture, "capture", false, "also capture today's daily snapshot")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(metricsConfigPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, newLogger())
	if err != nil {
		return err
	}

	reporter := metrics.NewReporter(store)
	now := time.Now().UTC()

	fmt.Println(reporter.Report(now).Format())

	if metricsCapture {
		snap, err := reporter.CaptureDaily(now)
		if err != nil {
			return fmt.Errorf("capture snapshot: %w", err)
		}
		fmt.Printf("Captured snapshot for %s (equity $%.2f)\n", snap.Date, snap.Equity)
	}

	return nil
}
