package jobs

import (
	"context"
	"errors"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/history"
	"github.com/solar-analytics/parquet-gate/internal/scheduler"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
	"github.com/solar-analytics/parquet-gate/pkg/redis"
)

// ValidationJob validates the staged batch on a schedule and records the run
type ValidationJob struct {
	runner   *history.Runner
	inputDir string
	schedule string
	logger   *logger.Logger
}

// NewValidationJob creates the scheduled gate job
func NewValidationJob(runner *history.Runner, inputDir, schedule string, log *logger.Logger) *ValidationJob {
	return &ValidationJob{
		runner:   runner,
		inputDir: inputDir,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ValidationJob) Name() string {
	return "validate_quality"
}

// Schedule returns the cron schedule
func (j *ValidationJob) Schedule() string {
	return j.schedule
}

// Run validates the batch. A critical verdict is final for this data and
// is not retried; aborted runs (I/O) are.
func (j *ValidationJob) Run(ctx context.Context) error {
	log := j.logger.WithField("input_dir", j.inputDir)

	run, err := j.runner.Run(ctx, j.inputDir)
	switch {
	case err == nil:
		log.WithField("run_id", run.ID).Info("Batch passed quality gate")
		return nil
	case errors.Is(err, redis.ErrLocked):
		log.Warn("Another validation is running, skipping")
		return scheduler.Permanent(err)
	case errors.Is(err, history.ErrRecord):
		return scheduler.Permanent(err)
	}

	if cf, ok := contracts.IsCriticalFailure(err); ok {
		log.WithField("run_id", run.ID).
			WithField("critical", len(cf.Failures())).
			Error("Batch failed quality gate, must not be published")
		return scheduler.Permanent(err)
	}

	return err
}
