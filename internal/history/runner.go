package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
)

// Locker serializes runs across processes
type Locker interface {
	Acquire(ctx context.Context) (func(context.Context) error, error)
}

// Runner executes one validation and records it as a ValidationRun
// ⭐ SSOT: the only place runs are created
type Runner struct {
	validator contracts.BatchValidator
	store     contracts.RunRecorder
	rulesHash string
	lock      Locker
	logger    *logger.Logger
	now       func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLock makes the runner hold l for the duration of each run
func WithLock(l Locker) RunnerOption {
	return func(r *Runner) {
		r.lock = l
	}
}

// WithRunnerLogger sets the logger
func WithRunnerLogger(l *logger.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner. rulesHash identifies the rules the
// validator was built with.
func NewRunner(v contracts.BatchValidator, store contracts.RunRecorder, rulesHash string, opts ...RunnerOption) *Runner {
	r := &Runner{
		validator: v,
		store:     store,
		rulesHash: rulesHash,
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates inputDir and records the outcome. The returned error is
// the validator's (critical failure or abort); a recording failure is
// returned only when validation itself succeeded.
func (r *Runner) Run(ctx context.Context, inputDir string) (*contracts.ValidationRun, error) {
	if r.lock != nil {
		release, err := r.lock.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				r.logger.WithError(err).Warn("release run lock failed")
			}
		}()
	}

	run := &contracts.ValidationRun{
		ID:        uuid.NewString(),
		InputDir:  inputDir,
		RulesHash: r.rulesHash,
		StartedAt: r.now().UTC(),
	}

	report, runErr := r.validator.Run(ctx, inputDir)
	run.FinishedAt = r.now().UTC()
	run.Report = report
	run.Passed = runErr == nil && report != nil && report.Passed()
	if runErr != nil {
		run.Error = runErr.Error()
	}

	log := r.logger.WithFields(map[string]any{
		"run_id":   run.ID,
		"passed":   run.Passed,
		"duration": run.Duration().String(),
	})

	recErr := r.store.Record(context.WithoutCancel(ctx), run)
	if recErr != nil {
		log.WithError(recErr).Error("failed to record validation run")
	} else {
		log.Info("validation run recorded")
	}

	if runErr != nil {
		return run, runErr
	}
	if recErr != nil {
		return run, errors.Join(ErrRecord, recErr)
	}
	return run, nil
}

// ErrRecord marks a run that completed but could not be stored
var ErrRecord = errors.New("record validation run")
