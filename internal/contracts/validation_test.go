package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationReport_Passed(t *testing.T) {
	tests := []struct {
		name   string
		report ValidationReport
		want   bool
	}{
		{
			name:   "empty report",
			report: ValidationReport{},
			want:   true,
		},
		{
			name: "warnings only",
			report: ValidationReport{
				Warnings: []Defect{NewWarning("a.parquet", "a.parquet: 3 unparseable timestamps")},
			},
			want: true,
		},
		{
			name: "one critical",
			report: ValidationReport{
				CriticalFailures: []Defect{NewCritical("", "File count mismatch: expected 131, found 130")},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Passed(); got != tt.want {
				t.Errorf("Passed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationReport_Defects(t *testing.T) {
	report := ValidationReport{
		CriticalFailures: []Defect{NewCritical("", "c1"), NewCritical("b", "c2")},
		Warnings:         []Defect{NewWarning("a", "w1")},
	}

	got := report.Defects()
	want := []string{"c1", "c2", "w1"}
	if len(got) != len(want) {
		t.Fatalf("Defects() len = %d, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.String() != want[i] {
			t.Errorf("Defects()[%d] = %q, want %q", i, d.String(), want[i])
		}
	}
	if !report.HasWarnings() {
		t.Error("HasWarnings() = false, want true")
	}
}

func TestDefect_Severity(t *testing.T) {
	if !NewCritical("f", "m").IsCritical() {
		t.Error("NewCritical().IsCritical() = false")
	}
	if NewWarning("f", "m").IsCritical() {
		t.Error("NewWarning().IsCritical() = true")
	}
}

func TestCriticalFailureError(t *testing.T) {
	report := &ValidationReport{
		CriticalFailures: []Defect{NewCritical("", "c1"), NewCritical("x", "c2")},
	}
	err := fmt.Errorf("run batch: %w", &CriticalFailureError{Report: report})

	cf, ok := IsCriticalFailure(err)
	if !ok {
		t.Fatal("IsCriticalFailure() = false, want true")
	}
	if len(cf.Failures()) != 2 {
		t.Errorf("Failures() len = %d, want 2", len(cf.Failures()))
	}
	wantMsg := "validation failed: 2 critical issue(s), batch must not be published"
	if cf.Error() != wantMsg {
		t.Errorf("Error() = %q, want %q", cf.Error(), wantMsg)
	}

	if _, ok := IsCriticalFailure(errors.New("disk on fire")); ok {
		t.Error("IsCriticalFailure(plain error) = true")
	}
	if got := (&CriticalFailureError{}).Failures(); got != nil {
		t.Errorf("Failures() without report = %v, want nil", got)
	}
}

func TestValidationRun_JSON(t *testing.T) {
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	run := ValidationRun{
		ID:         "run-1",
		InputDir:   "data/staging/monthly",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Passed:     true,
	}

	if run.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", run.Duration())
	}

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := fields["error"]; ok {
		t.Error("empty error should be omitted")
	}
	if _, ok := fields["report"]; ok {
		t.Error("nil report should be omitted")
	}
}
