package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationAborted wraps every failure that kept validation from completing
	ErrValidationAborted = errors.New("validation aborted")

	// ErrPartition marks a file whose path has no resolvable year/month partition
	ErrPartition = errors.New("unresolved partition")
)

// CriticalFailureError is returned when validation completed but found
// critical defects. The full report stays attached.
type CriticalFailureError struct {
	Report *ValidationReport
}

// Failures returns every critical defect, not just the first
func (e *CriticalFailureError) Failures() []Defect {
	if e.Report == nil {
		return nil
	}
	return e.Report.CriticalFailures
}

func (e *CriticalFailureError) Error() string {
	return fmt.Sprintf("validation failed: %d critical issue(s), batch must not be published", len(e.Failures()))
}

// IsCriticalFailure reports whether err carries a completed report with critical defects
func IsCriticalFailure(err error) (*CriticalFailureError, bool) {
	var cf *CriticalFailureError
	if errors.As(err, &cf) {
		return cf, true
	}
	return nil, false
}
