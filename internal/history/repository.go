// Package history records validation runs for the API and operators.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

// ErrNotFound is returned when no run matches
var ErrNotFound = errors.New("validation run not found")

// Repository persists runs and their defects in PostgreSQL
// ⭐ SSOT: audit.validation_runs / audit.validation_defects
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a run repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const runColumns = `
	run_id, input_dir, rules_hash, started_at, finished_at, passed, error, report
`

// Record saves a run and one row per defect, in report order
func (r *Repository) Record(ctx context.Context, run *contracts.ValidationRun) error {
	var (
		reportJSON              []byte
		totalFiles              int
		totalRows               int64
		criticalCount, warnings int
	)
	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		reportJSON = data
		totalFiles = run.Report.TotalFiles
		totalRows = run.Report.TotalRows
		criticalCount = len(run.Report.CriticalFailures)
		warnings = len(run.Report.Warnings)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO audit.validation_runs (
			run_id, input_dir, rules_hash, started_at, finished_at, passed, error,
			total_files, total_rows, critical_count, warning_count, report
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		run.ID,
		run.InputDir,
		run.RulesHash,
		run.StartedAt,
		run.FinishedAt,
		run.Passed,
		run.Error,
		totalFiles,
		totalRows,
		criticalCount,
		warnings,
		reportJSON,
	)
	if err != nil {
		return fmt.Errorf("save validation run: %w", err)
	}

	if run.Report != nil {
		batch := &pgx.Batch{}
		for i, d := range run.Report.Defects() {
			batch.Queue(`
				INSERT INTO audit.validation_defects (run_id, seq, severity, file_name, message)
				VALUES ($1, $2, $3, $4, $5)
			`, run.ID, i, string(d.Severity), d.FileName, d.Message)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("save validation defects: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit validation run: %w", err)
	}

	return nil
}

// Latest returns the most recent run
func (r *Repository) Latest(ctx context.Context) (*contracts.ValidationRun, error) {
	query := `SELECT` + runColumns + `
		FROM audit.validation_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get latest validation run: %w", err)
	}
	return run, nil
}

// Get returns one run by ID
func (r *Repository) Get(ctx context.Context, id string) (*contracts.ValidationRun, error) {
	query := `SELECT` + runColumns + `
		FROM audit.validation_runs
		WHERE run_id = $1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get validation run %s: %w", id, err)
	}
	return run, nil
}

// List returns up to limit runs, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]contracts.ValidationRun, error) {
	query := `SELECT` + runColumns + `
		FROM audit.validation_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]contracts.ValidationRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validation run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list validation runs: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*contracts.ValidationRun, error) {
	run := &contracts.ValidationRun{}
	var reportJSON []byte

	err := row.Scan(
		&run.ID,
		&run.InputDir,
		&run.RulesHash,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Passed,
		&run.Error,
		&reportJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(reportJSON) > 0 {
		run.Report = &contracts.ValidationReport{}
		if err := json.Unmarshal(reportJSON, run.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
	}

	return run, nil
}
