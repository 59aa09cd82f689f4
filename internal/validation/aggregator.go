package validation

import (
	"errors"
	"fmt"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

// ErrSealed is returned when a sealed report is mutated
var ErrSealed = errors.New("report already sealed")

// Aggregator owns the report while a run is in progress
// ⭐ SSOT: the only writer of contracts.ValidationReport
type Aggregator struct {
	expectedFiles int
	report        *contracts.ValidationReport
	sealed        bool
}

// NewAggregator creates an aggregator with an empty report
func NewAggregator(expectedFiles int) *Aggregator {
	return &Aggregator{
		expectedFiles: expectedFiles,
		report: &contracts.ValidationReport{
			CriticalFailures: []contracts.Defect{},
			Warnings:         []contracts.Defect{},
			FilesValidated:   []contracts.FileSummary{},
		},
	}
}

// Begin records the discovered file count and runs the batch-level file
// count check. Called once, before any file is recorded.
func (a *Aggregator) Begin(discovered int) (contracts.Defect, bool, error) {
	if a.sealed {
		return contracts.Defect{}, false, ErrSealed
	}

	a.report.TotalFiles = discovered
	if discovered == a.expectedFiles {
		return contracts.Defect{}, false, nil
	}

	d := contracts.NewCritical("",
		fmt.Sprintf("File count mismatch: expected %d, found %d", a.expectedFiles, discovered))
	return d, true, a.Append(d)
}

// Append adds one defect to the sequence matching its severity
func (a *Aggregator) Append(d contracts.Defect) error {
	if a.sealed {
		return ErrSealed
	}

	if d.IsCritical() {
		a.report.CriticalFailures = append(a.report.CriticalFailures, d)
	} else {
		a.report.Warnings = append(a.report.Warnings, d)
	}
	return nil
}

// Record appends one file's metadata and defects, keeping check order
func (a *Aggregator) Record(res contracts.FileResult) error {
	if a.sealed {
		return ErrSealed
	}

	for _, d := range res.Defects {
		if err := a.Append(d); err != nil {
			return err
		}
	}
	if res.Skipped {
		return nil
	}

	a.report.TotalRows += res.Rows
	a.report.FilesValidated = append(a.report.FilesValidated, res.Summary())
	return nil
}

// Seal freezes the report and hands it out
func (a *Aggregator) Seal() *contracts.ValidationReport {
	a.sealed = true
	return a.report
}
