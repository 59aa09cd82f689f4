package contracts

import (
	"time"
)

// Severity classifies a defect. Fixed at creation.
type Severity string

const (
	// SeverityCritical blocks publication of the batch
	SeverityCritical Severity = "critical"
	// SeverityWarning is recorded but never blocks
	SeverityWarning Severity = "warning"
)

// Defect is a single finding against the batch or one of its files
type Defect struct {
	Severity Severity `json:"severity"`
	FileName string   `json:"file_name,omitempty"` // empty for batch-level defects
	Message  string   `json:"message"`
}

// NewCritical creates a critical defect
func NewCritical(fileName, message string) Defect {
	return Defect{Severity: SeverityCritical, FileName: fileName, Message: message}
}

// NewWarning creates a warning defect
func NewWarning(fileName, message string) Defect {
	return Defect{Severity: SeverityWarning, FileName: fileName, Message: message}
}

// IsCritical reports whether the defect blocks publication
func (d Defect) IsCritical() bool {
	return d.Severity == SeverityCritical
}

// String returns the message as it appears in summaries
func (d Defect) String() string {
	return d.Message
}

// ValidationReport is the sealed outcome of one validation pass
// ⭐ SSOT: only the aggregator builds this; callers treat it as read-only
type ValidationReport struct {
	TotalFiles       int           `json:"total_files"`
	TotalRows        int64         `json:"total_rows"`
	CriticalFailures []Defect      `json:"critical_failures"`
	Warnings         []Defect      `json:"warnings"`
	FilesValidated   []FileSummary `json:"files_validated"`
}

// Passed reports whether the batch may be published
func (r *ValidationReport) Passed() bool {
	return len(r.CriticalFailures) == 0
}

// HasWarnings reports whether non-blocking issues were found
func (r *ValidationReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Defects returns critical failures followed by warnings
func (r *ValidationReport) Defects() []Defect {
	all := make([]Defect, 0, len(r.CriticalFailures)+len(r.Warnings))
	all = append(all, r.CriticalFailures...)
	all = append(all, r.Warnings...)
	return all
}

// ValidationRun wraps a report with run metadata for history and the API.
// Wall-clock fields live here, never inside the report.
type ValidationRun struct {
	ID         string            `json:"id"`
	InputDir   string            `json:"input_dir"`
	RulesHash  string            `json:"rules_hash"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Passed     bool              `json:"passed"`
	Error      string            `json:"error,omitempty"`
	Report     *ValidationReport `json:"report,omitempty"`
}

// Duration returns how long the run took
func (r *ValidationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
