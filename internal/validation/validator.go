// Package validation is the batch data-quality gate: it decides whether a
// directory of converted Parquet files may be published.
package validation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/rules"
	"github.com/solar-analytics/parquet-gate/internal/table"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
)

// Validator runs the gate over one batch directory
type Validator struct {
	loader  table.Loader
	rules   rules.Rules
	logger  *logger.Logger
	workers int
}

// Option configures a Validator
type Option func(*Validator)

// WithRules overrides the built-in rules
func WithRules(r rules.Rules) Option {
	return func(v *Validator) {
		v.rules = r.Clone()
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// WithWorkers inspects up to n files concurrently. Results are merged in
// discovery order, so the report is identical to a sequential run.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// New creates a Validator reading files through loader
func New(loader table.Loader, opts ...Option) *Validator {
	v := &Validator{
		loader:  loader,
		rules:   rules.DefaultRules(),
		logger:  logger.Nop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Rules returns a copy of the rules in effect
func (v *Validator) Rules() rules.Rules {
	return v.rules.Clone()
}

// Run validates every file under inputDir.
//
// On success it returns the sealed report, warnings included. When
// critical defects exist it returns the sealed report together with a
// *contracts.CriticalFailureError. When validation cannot complete
// (unreadable directory or file, or an unresolved partition under the
// abort policy) it returns a nil report and an error wrapping
// contracts.ErrValidationAborted.
func (v *Validator) Run(ctx context.Context, inputDir string) (*contracts.ValidationReport, error) {
	if err := rules.Validate(&v.rules); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrValidationAborted, err)
	}

	files, err := Discover(inputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrValidationAborted, err)
	}

	log := v.logger.WithField("input_dir", inputDir)
	agg := NewAggregator(v.rules.ExpectedFiles)

	// CHECK 1: file count
	if d, failed, err := agg.Begin(len(files)); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrValidationAborted, err)
	} else if failed {
		log.Errorf("CHECK 1 FAILED: %s", d.Message)
	} else {
		log.Infof("CHECK 1 PASSED: %d files found", len(files))
	}

	results, err := v.inspectAll(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrValidationAborted, err)
	}

	for _, res := range results {
		if err := agg.Record(res); err != nil {
			return nil, fmt.Errorf("%w: %w", contracts.ErrValidationAborted, err)
		}
	}

	report := agg.Seal()
	v.logReport(log, report)

	if !report.Passed() {
		return report, &contracts.CriticalFailureError{Report: report}
	}
	return report, nil
}

// inspectAll inspects every file and returns results in discovery order
func (v *Validator) inspectAll(ctx context.Context, files []contracts.FileIdentity) ([]contracts.FileResult, error) {
	inspector := NewInspector(v.rules)
	results := make([]contracts.FileResult, len(files))

	if v.workers <= 1 {
		for i, id := range files {
			res, err := v.inspectFile(ctx, inspector, id)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, id := range files {
		g.Go(func() error {
			res, err := v.inspectFile(gctx, inspector, id)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// inspectFile applies the partition policy, loads the table and inspects it.
// Loader errors are never downgraded to defects.
func (v *Validator) inspectFile(ctx context.Context, inspector *Inspector, id contracts.FileIdentity) (contracts.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return contracts.FileResult{}, err
	}

	var partitionDefects []contracts.Defect
	if !id.Resolved {
		switch v.rules.PartitionPolicy {
		case rules.PartitionAbort:
			return contracts.FileResult{}, fmt.Errorf("%s: %w", id.Path, contracts.ErrPartition)
		case rules.PartitionSkip:
			v.logger.WithFile(id.Name).Warn("no year/month partition in path, file excluded from inspection")
			return contracts.FileResult{Identity: id, Skipped: true}, nil
		default:
			partitionDefects = append(partitionDefects, contracts.NewCritical(id.Name,
				fmt.Sprintf("%s: cannot resolve year/month partition from path", id.Name)))
		}
	}

	tbl, err := v.loader.Load(ctx, id.Path)
	if err != nil {
		return contracts.FileResult{}, fmt.Errorf("load %s: %w", id.Path, err)
	}

	res := inspector.Inspect(id, tbl)
	res.Defects = append(partitionDefects, res.Defects...)

	v.logger.WithFile(id.Name).WithFields(map[string]any{
		"rows":    res.Rows,
		"columns": res.Columns,
		"defects": len(res.Defects),
	}).Debug("file inspected")

	return res, nil
}

// logReport writes the summary block the pipeline operators grep for
func (v *Validator) logReport(log *logger.Logger, r *contracts.ValidationReport) {
	log.WithFields(map[string]any{
		"files":    r.TotalFiles,
		"rows":     r.TotalRows,
		"critical": len(r.CriticalFailures),
		"warnings": len(r.Warnings),
	}).Info("VALIDATION SUMMARY")

	for _, d := range r.CriticalFailures {
		log.Errorf("CRITICAL: %s", d.Message)
	}

	if len(r.Warnings) == 0 {
		log.Info("No warnings, data quality looks clean")
		return
	}
	log.Warnf("%d quality warnings (non-blocking)", len(r.Warnings))
	for _, d := range r.Warnings {
		log.Warnf("WARNING: %s", d.Message)
	}
}
