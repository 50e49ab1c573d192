package main

import (
	"os"

	"github.com/rustyeddy/fundsim/cmd/fundsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
