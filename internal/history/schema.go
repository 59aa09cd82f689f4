package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS audit;

CREATE TABLE IF NOT EXISTS audit.validation_runs (
	run_id         TEXT PRIMARY KEY,
	input_dir      TEXT NOT NULL,
	rules_hash     TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL,
	passed         BOOLEAN NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	total_files    INTEGER NOT NULL DEFAULT 0,
	total_rows     BIGINT NOT NULL DEFAULT 0,
	critical_count INTEGER NOT NULL DEFAULT 0,
	warning_count  INTEGER NOT NULL DEFAULT 0,
	report         JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_validation_runs_started ON audit.validation_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS audit.validation_defects (
	run_id    TEXT NOT NULL REFERENCES audit.validation_runs(run_id) ON DELETE CASCADE,
	seq       INTEGER NOT NULL,
	severity  TEXT NOT NULL,
	file_name TEXT NOT NULL DEFAULT '',
	message   TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_validation_defects_file ON audit.validation_defects(file_name);
`

// EnsureSchema creates the history tables if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}
