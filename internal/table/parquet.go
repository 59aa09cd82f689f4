package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// julianUnixEpoch is the Julian day number of 1970-01-01, used by INT96 timestamps
const julianUnixEpoch = 2440588

// ParquetLoader reads converted Parquet files
type ParquetLoader struct {
	// BatchSize is the number of values read per call; 0 uses the default
	BatchSize int
}

// NewParquetLoader creates a Parquet loader
func NewParquetLoader() *ParquetLoader {
	return &ParquetLoader{BatchSize: 4096}
}

// Load materializes one column per top-level field, named by the field.
// Nested fields become one []any cell per row.
func (l *ParquetLoader) Load(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet footer %s: %w", path, err)
	}

	schema := pf.Schema()
	fields := schema.Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}

	leaves := make(map[string][]parquet.LeafColumn, len(fields))
	for _, p := range schema.Columns() {
		leaf, ok := schema.Lookup(p...)
		if !ok {
			return nil, fmt.Errorf("%s: column %s missing from schema", path, strings.Join(p, "."))
		}
		leaves[p[0]] = append(leaves[p[0]], leaf)
	}

	tbl := New(names, pf.NumRows())
	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cols := leaves[names[i]]
		if len(cols) == 0 {
			return nil, fmt.Errorf("%s: column %s has no values", path, names[i])
		}

		var values []any
		if field.Leaf() && !field.Repeated() {
			values, err = l.readColumn(pf, cols[0])
		} else {
			values, err = l.readNested(pf, field, cols)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: column %s: %w", path, names[i], err)
		}
		if err := tbl.SetColumn(names[i], values); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return tbl, nil
}

// readColumn decodes one flat leaf column across all row groups
func (l *ParquetLoader) readColumn(pf *parquet.File, leaf parquet.LeafColumn) ([]any, error) {
	convert := converterFor(leaf.Node)
	out := make([]any, 0, pf.NumRows())

	err := l.scanLeaf(pf, leaf, func(v parquet.Value) {
		out = append(out, convert(v))
	})
	return out, err
}

// readNested folds a repeated, list, map or group field into one cell per
// row: nil when the field is null, otherwise the non-null values of its
// leaves in schema order.
func (l *ParquetLoader) readNested(pf *parquet.File, field parquet.Field, leaves []parquet.LeafColumn) ([]any, error) {
	cells := make([]any, 0, pf.NumRows())

	for i, leaf := range leaves {
		convert := converterFor(leaf.Node)
		row := -1

		err := l.scanLeaf(pf, leaf, func(v parquet.Value) {
			if v.RepetitionLevel() == 0 {
				row++
				if i == 0 {
					if field.Optional() && v.DefinitionLevel() == 0 {
						cells = append(cells, nil)
					} else {
						cells = append(cells, []any{})
					}
				}
			}
			if v.IsNull() || row < 0 || row >= len(cells) || cells[row] == nil {
				return
			}
			cells[row] = append(cells[row].([]any), convert(v))
		})
		if err != nil {
			return nil, err
		}
		if row+1 != len(cells) {
			return nil, fmt.Errorf("leaf %s: got %d rows, want %d", strings.Join(leaf.Path, "."), row+1, len(cells))
		}
	}

	return cells, nil
}

// scanLeaf visits every value of one leaf column across all row groups
func (l *ParquetLoader) scanLeaf(pf *parquet.File, leaf parquet.LeafColumn, visit func(parquet.Value)) error {
	batch := l.BatchSize
	if batch <= 0 {
		batch = 4096
	}
	buf := make([]parquet.Value, batch)

	for _, rg := range pf.RowGroups() {
		pages := rg.ColumnChunks()[leaf.ColumnIndex].Pages()
		for {
			page, err := pages.ReadPage()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				pages.Close()
				return fmt.Errorf("read page: %w", err)
			}

			reader := page.Values()
			for {
				n, err := reader.ReadValues(buf)
				for _, v := range buf[:n] {
					visit(v)
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					pages.Close()
					return fmt.Errorf("read values: %w", err)
				}
			}
		}
		if err := pages.Close(); err != nil {
			return fmt.Errorf("close pages: %w", err)
		}
	}

	return nil
}

// converterFor picks the Go representation of a leaf column's values
func converterFor(node parquet.Node) func(parquet.Value) any {
	typ := node.Type()

	if lt := typ.LogicalType(); lt != nil {
		switch {
		case lt.Timestamp != nil:
			unit := time.Millisecond
			switch {
			case lt.Timestamp.Unit.Micros != nil:
				unit = time.Microsecond
			case lt.Timestamp.Unit.Nanos != nil:
				unit = time.Nanosecond
			}
			return func(v parquet.Value) any {
				if v.IsNull() {
					return nil
				}
				return time.Unix(0, v.Int64()*int64(unit)).UTC()
			}
		case lt.Date != nil:
			return func(v parquet.Value) any {
				if v.IsNull() {
					return nil
				}
				return time.Unix(int64(v.Int32())*86400, 0).UTC()
			}
		}
	}

	switch typ.Kind() {
	case parquet.Boolean:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return v.Boolean()
		}
	case parquet.Int32:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return int64(v.Int32())
		}
	case parquet.Int64:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return v.Int64()
		}
	case parquet.Int96:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			i96 := v.Int96()
			nanos := int64(uint64(i96[1])<<32 | uint64(i96[0]))
			days := int64(i96[2]) - julianUnixEpoch
			return time.Unix(days*86400, nanos).UTC()
		}
	case parquet.Float:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return float64(v.Float())
		}
	case parquet.Double:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return v.Double()
		}
	default:
		return func(v parquet.Value) any {
			if v.IsNull() {
				return nil
			}
			return string(v.ByteArray())
		}
	}
}
