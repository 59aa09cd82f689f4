package commands

import (
	"github.com/spf13/cobra"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

// Exit codes
const (
	ExitOK       = 0
	ExitAborted  = 1 // validation could not complete, or a usage/config error
	ExitCritical = 2 // validation completed with critical defects
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gate",
	Short: "Parquet quality gate for monthly solar exports",
	Long: `Parquet quality gate

Validates a converted batch (<root>/year=YYYY/month=MM/*.parquet) before
it is published. Critical defects block the batch; warnings are recorded.

Usage:
  go run ./cmd/gate [command]

Examples:
  go run ./cmd/gate validate --input data/staging/monthly
  go run ./cmd/gate rules show
  go run ./cmd/gate serve
  go run ./cmd/gate schedule`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if _, ok := contracts.IsCriticalFailure(err); ok {
		return ExitCritical
	}
	return ExitAborted
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
