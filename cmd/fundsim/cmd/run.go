package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fundsim/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a funding-rate scenario against the engine",
	Long: `Run the paper-trading engine over a scripted scenario file.

The scenario file lists steps that publish funding rates, advance the
simulated clock (running an engine tick), fire entry alerts, force
manual closes, and capture daily snapshots.

Example:
  fundsim run -s examples/scenarios/carry.yaml -f fundsim.yaml`,
	RunE: runRun,
}

var (
	runConfigPath   string
	runScenarioPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVarP(&runScenarioPath, "scenario", "s", "", "path to scenario file (required)")
	runCmd.MarkFlagRequired("scenario")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	scn, err := LoadScenario(runScenarioPath)
	if err != nil {
		return err
	}
	start, err := scn.StartTime()
	if err != nil {
		return fmt.Errorf("invalid scenario start: %w", err)
	}

	log := newLogger()
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	jrnl, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	runner := newScenarioRunner(scn, start)
	runner.eng = engine.New(store, engine.Config{
		Risk:             cfg.RiskPolicy(),
		Leverage:         cfg.LeveragePolicy(),
		TakerFeeRate:     cfg.Account.TakerFeeRate,
		DefaultSize:      cfg.Account.DefaultSize,
		Rates:            runner,
		Baselines:        runner.baselines,
		Journal:          jrnl,
		Logger:           log,
		MaxParallelFetch: cfg.Engine.MaxParallelFetch,
		Now:              func() time.Time { return runner.now },
	})

	fmt.Printf("Running scenario: %s (%d steps from %s)\n\n",
		runScenarioPath, len(scn.Steps), start.Format(time.RFC3339))

	if err := runner.Run(context.Background(), scn); err != nil {
		return err
	}

	acct := store.Account()
	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Equity: $%.2f\n", acct.Equity)
	fmt.Printf("  Profit/Loss: $%.2f\n", acct.Equity-acct.StartingCapital)
	fmt.Printf("  Peak Equity: $%.2f\n", acct.PeakEquity)
	fmt.Printf("  Open Positions: %d\n", len(acct.OpenPositions))
	fmt.Printf("\nLedger saved to: %s\n", cfg.Storage.Dir)

	return nil
}
