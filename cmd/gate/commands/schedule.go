package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solar-analytics/parquet-gate/internal/scheduler"
	"github.com/solar-analytics/parquet-gate/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the gate on a cron schedule",
	Long: `Starts the scheduler with the validate_quality job (GATE_SCHEDULE,
seconds first). Aborted runs are retried; critical verdicts are not.

Stop with Ctrl+C.

Example:
  go run ./cmd/gate schedule
  go run ./cmd/gate schedule --now`,
	RunE: runSchedule,
}

var scheduleNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also run once immediately")
}

// newScheduler registers the validation job
func newScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)
	job := jobs.NewValidationJob(d.runner(0), d.cfg.Validation.InputDir, d.cfg.Schedule, d.log)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	d, err := initStoreDeps(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := newScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	if scheduleNow {
		for _, name := range sched.GetAllJobs() {
			if err := sched.RunJob(name); err != nil {
				return err
			}
		}
	}

	d.log.WithFields(map[string]any{
		"schedule":  d.cfg.Schedule,
		"input_dir": d.cfg.Validation.InputDir,
	}).Info("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
