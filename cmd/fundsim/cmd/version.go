package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the fundsim CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fundsim version %s\n", version)
		fmt.Println("A paper-trading engine for funding-rate strategies")
		fmt.Println("https://github.com/rustyeddy/fundsim")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
