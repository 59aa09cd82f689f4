package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solar-analytics/parquet-gate/internal/table"
)

// boundColumns carries one column per default bound prefix, in order
var boundColumns = []string{"G_H1", "G_M1", "T_U1", "T_M1", "T_WR1", "P_AC1", "U_DC1", "U_AC1"}

// fakeLoader serves tables by path and never touches the file contents
type fakeLoader struct {
	tables map[string]*table.Table
	errs   map[string]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		tables: make(map[string]*table.Table),
		errs:   make(map[string]error),
	}
}

func (f *fakeLoader) Load(_ context.Context, path string) (*table.Table, error) {
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	tbl, ok := f.tables[path]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", path)
	}
	return tbl, nil
}

// columnNames returns n column names: timestamp, the bound columns, then fillers
func columnNames(n int) []string {
	names := append([]string{"timestamp"}, boundColumns...)
	for i := len(names); i < n; i++ {
		names = append(names, fmt.Sprintf("aux_%03d", i))
	}
	return names[:n]
}

// wellFormedTable builds a table with n columns whose values are all in
// bounds and whose timestamps all fall inside year/month
func wellFormedTable(t *testing.T, year, month, rows, n int) *table.Table {
	t.Helper()

	names := columnNames(n)
	tbl := table.New(names, int64(rows))
	for _, name := range names {
		values := make([]any, rows)
		for r := 0; r < rows; r++ {
			switch name {
			case "timestamp":
				values[r] = time.Date(year, time.Month(month), 1+r%28, 12, 0, 0, 0, time.UTC)
			default:
				values[r] = float64(10 + r)
			}
		}
		require.NoError(t, tbl.SetColumn(name, values))
	}
	return tbl
}

// setCell overwrites one cell of a column
func setCell(t *testing.T, tbl *table.Table, column string, row int, value any) {
	t.Helper()
	cells, ok := tbl.Column(column)
	require.True(t, ok, "column %s", column)
	cells[row] = value
}

// partitionPath returns <root>/year=YYYY/month=MM/solar_data_YYYY_MM.parquet
func partitionPath(root string, year, month int) string {
	return filepath.Join(root,
		fmt.Sprintf("year=%d", year),
		fmt.Sprintf("month=%02d", month),
		fmt.Sprintf("solar_data_%d_%02d.parquet", year, month))
}

// touch creates an empty file and its parents
func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// batch lays out count monthly files starting at 2013-02 and registers a
// well-formed 107-column table for each
type batch struct {
	root   string
	loader *fakeLoader
	paths  []string
}

func newBatch(t *testing.T, count int) *batch {
	t.Helper()

	b := &batch{root: t.TempDir(), loader: newFakeLoader()}
	year, month := 2013, 2
	for i := 0; i < count; i++ {
		p := partitionPath(b.root, year, month)
		touch(t, p)
		b.loader.tables[p] = wellFormedTable(t, year, month, 3, 107)
		b.paths = append(b.paths, p)

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return b
}
