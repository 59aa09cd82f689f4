package main

import (
	"os"

	"github.com/solar-analytics/parquet-gate/cmd/gate/commands"
)

// main is the entry point for the gate CLI: go run ./cmd/gate [command]
func main() {
	os.Exit(commands.ExitCode(commands.Execute()))
}
