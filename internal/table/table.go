// Package table holds the in-memory materialization of one converted file.
package table

import (
	"context"
	"fmt"
)

// Loader materializes one file into a Table
type Loader interface {
	Load(ctx context.Context, path string) (*Table, error)
}

// Table is a column-oriented view of one file. Cells are nil (missing),
// bool, int64, float64, string or time.Time.
type Table struct {
	columns []string
	index   map[string]int
	values  [][]any
	rows    int64
}

// New creates an empty table with the given ordered column names
func New(columns []string, rows int64) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		values:  make([][]any, len(columns)),
		rows:    rows,
	}
	for i, name := range columns {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t
}

// SetColumn stores the values of a named column
func (t *Table) SetColumn(name string, values []any) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("unknown column %q", name)
	}
	if int64(len(values)) != t.rows {
		return fmt.Errorf("column %q: got %d values, want %d", name, len(values), t.rows)
	}
	t.values[i] = values
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int64 {
	return t.rows
}

// NumColumns returns the column count
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Columns returns the column names in file order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table has a column with this exact name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the raw cells of a column
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.values[i], true
}

// Floats returns the numeric values of a column. Missing and
// non-numeric cells are dropped.
func (t *Table) Floats(name string) []float64 {
	cells, ok := t.Column(name)
	if !ok {
		return nil
	}

	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, ok := ToFloat(c); ok {
			out = append(out, f)
		}
	}
	return out
}

// TimeColumn is the timestamp view of a column
type TimeColumn struct {
	Parsed      []Timestamp
	Unparseable int // present but not a timestamp
	Missing     int // nil cells
}

// Timestamp is a parsed cell's calendar position
type Timestamp struct {
	Year  int
	Month int
}

// Times parses every cell of a column as a timestamp
func (t *Table) Times(name string) TimeColumn {
	var tc TimeColumn
	cells, ok := t.Column(name)
	if !ok {
		return tc
	}

	tc.Parsed = make([]Timestamp, 0, len(cells))
	for _, c := range cells {
		if IsMissing(c) {
			tc.Missing++
			continue
		}
		ts, ok := ToTime(c)
		if !ok {
			tc.Unparseable++
			continue
		}
		tc.Parsed = append(tc.Parsed, Timestamp{Year: ts.Year(), Month: int(ts.Month())})
	}
	return tc
}
