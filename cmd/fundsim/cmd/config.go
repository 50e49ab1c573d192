package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fundsim/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for the paper-trading engine.

Subcommands:
  init     - Generate a default configuration file
  show     - Print the effective configuration
  validate - Validate an existing configuration file

Examples:
  fundsim config init -o fundsim.yaml
  fundsim config show -f fundsim.yaml
  fundsim config validate -f fundsim.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  fundsim config init -o fundsim.yaml`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration as YAML after file loading and environment
overrides, i.e. exactly what the engine would run with.

Example:
  fundsim config show -f fundsim.yaml`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  fundsim config validate -f fundsim.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configShowPath     string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "fundsim.yaml", "output config file path")
	configShowCmd.Flags().StringVarP(&configShowPath, "file", "f", "", "path to config file (defaults + env when omitted)")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  fundsim run -s scenario.yaml -f %s\n", configInitOutput)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configShowPath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Capital: $%.2f (default size $%.2f)\n", cfg.Account.StartingCapital, cfg.Account.DefaultSize)
	fmt.Printf("  Risk: max %d positions, %.0f%% exposure cap, %.0f%% drawdown halt\n",
		cfg.Risk.MaxOpenPositions, cfg.Risk.MaxExposurePct*100, -cfg.Risk.MaxDrawdownPct*100)
	fmt.Printf("  Leverage: %s (max %.0fx)\n", cfg.Leverage.Strategy, cfg.Leverage.Max)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
