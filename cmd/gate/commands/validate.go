package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/validation"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a converted batch",
	Long: `Validates every Parquet file under the input directory and prints
the summary (or the JSON report with --json).

Exit codes:
  0  passed (warnings allowed)
  1  validation could not complete
  2  critical defects, the batch must not be published

Example:
  go run ./cmd/gate validate
  go run ./cmd/gate validate --input data/staging/monthly --workers 4
  go run ./cmd/gate validate --rules gate-rules.yaml --json --record`,
	RunE: runValidate,
}

var (
	validateInput   string
	validateRules   string
	validateJSON    bool
	validateWorkers int
	validateRecord  bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateInput, "input", "", "batch directory (default GATE_INPUT_DIR)")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "YAML rules file (default GATE_RULES_FILE)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as JSON")
	validateCmd.Flags().IntVar(&validateWorkers, "workers", 0, "files inspected concurrently (default GATE_WORKERS)")
	validateCmd.Flags().BoolVar(&validateRecord, "record", false, "record the run in history")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := initDeps(validateRules)
	if err != nil {
		return err
	}
	defer d.Close()

	inputDir := validateInput
	if inputDir == "" {
		inputDir = d.cfg.Validation.InputDir
	}

	var (
		report *contracts.ValidationReport
		runErr error
	)
	if validateRecord {
		if err := d.openStore(ctx); err != nil {
			return err
		}
		if !d.persistent() {
			d.log.Warn("--record without DATABASE_URL keeps the run in memory only")
		}
		var run *contracts.ValidationRun
		run, runErr = d.runner(validateWorkers).Run(ctx, inputDir)
		if run != nil {
			report = run.Report
		}
	} else {
		report, runErr = d.validator(validateWorkers).Run(ctx, inputDir)
	}

	if report != nil {
		if err := printReport(report); err != nil {
			return err
		}
	}

	return runErr
}

func printReport(report *contracts.ValidationReport) error {
	if !validateJSON {
		fmt.Print(validation.Summary(report))
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
