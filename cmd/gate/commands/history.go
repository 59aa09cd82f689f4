package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solar-analytics/parquet-gate/internal/validation"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded validation runs",
	Long: `Lists and shows runs recorded in PostgreSQL (DATABASE_URL).

Example:
  go run ./cmd/gate history list --limit 10
  go run ./cmd/gate history show <run-id>`,
}

var (
	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE:  runHistoryList,
	}

	historyShowCmd = &cobra.Command{
		Use:   "show [run_id]",
		Short: "Print the summary of one run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	historyLimit int
)

var errNoHistory = errors.New("run history requires DATABASE_URL")

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := initStoreDeps(ctx, "")
	if err != nil {
		return err
	}
	defer d.Close()
	if !d.persistent() {
		return errNoHistory
	}

	runs, err := d.store.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-20s  %-6s  %8s  %8s  %s\n", "RUN", "STARTED", "RESULT", "CRITICAL", "WARNINGS", "DURATION")
	for _, run := range runs {
		result := "FAILED"
		if run.Passed {
			result = "PASSED"
		}
		critical, warnings := "-", "-"
		if run.Report != nil {
			critical = fmt.Sprint(len(run.Report.CriticalFailures))
			warnings = fmt.Sprint(len(run.Report.Warnings))
		}
		fmt.Printf("%-36s  %-20s  %-6s  %8s  %8s  %s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			result,
			critical,
			warnings,
			run.Duration().Round(time.Millisecond),
		)
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := initStoreDeps(ctx, "")
	if err != nil {
		return err
	}
	defer d.Close()
	if !d.persistent() {
		return errNoHistory
	}

	run, err := d.store.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run:        %s\n", run.ID)
	fmt.Printf("Input:      %s\n", run.InputDir)
	fmt.Printf("Rules hash: %s\n", run.RulesHash)
	fmt.Printf("Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Printf("Duration:   %s\n", run.Duration().Round(time.Millisecond))
	if run.Error != "" {
		fmt.Printf("Error:      %s\n", run.Error)
	}
	if run.Report != nil {
		fmt.Print(validation.Summary(run.Report))
	}

	return nil
}
