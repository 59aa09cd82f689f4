package contracts

import (
	"context"
)

// BatchValidator validates one converted batch
// ⭐ SSOT: the single entry point exposed to orchestration
type BatchValidator interface {
	Run(ctx context.Context, inputDir string) (*ValidationReport, error)
}

// RunRecorder stores finished runs
type RunRecorder interface {
	Record(ctx context.Context, run *ValidationRun) error
}

// RunReader reads recorded runs
type RunReader interface {
	Latest(ctx context.Context) (*ValidationRun, error)
	List(ctx context.Context, limit int) ([]ValidationRun, error)
	Get(ctx context.Context, id string) (*ValidationRun, error)
}

// RunStore records and reads runs
type RunStore interface {
	RunRecorder
	RunReader
}
