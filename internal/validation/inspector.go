package validation

import (
	"fmt"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/rules"
	"github.com/solar-analytics/parquet-gate/internal/table"
)

// Inspector evaluates one file against the structural and physical rules.
// It reads only its own table and the immutable rules, so separate files
// can be inspected concurrently.
type Inspector struct {
	rules rules.Rules
}

// NewInspector creates an inspector bound to a copy of r
func NewInspector(r rules.Rules) *Inspector {
	return &Inspector{rules: r.Clone()}
}

// Inspect runs every check in fixed order: schema, emptiness, timestamps,
// bounds. A failing check never skips the ones after it.
func (i *Inspector) Inspect(id contracts.FileIdentity, tbl *table.Table) contracts.FileResult {
	res := contracts.FileResult{
		Identity: id,
		Rows:     tbl.NumRows(),
		Columns:  tbl.NumColumns(),
	}

	res.Defects = append(res.Defects, i.checkSchema(id, tbl)...)
	res.Defects = append(res.Defects, i.checkNonEmpty(id, tbl)...)
	res.Defects = append(res.Defects, i.checkTimestamps(id, tbl)...)
	res.Defects = append(res.Defects, i.checkBounds(id, tbl)...)

	return res
}

// checkSchema: column count must match the batch-wide constant
func (i *Inspector) checkSchema(id contracts.FileIdentity, tbl *table.Table) []contracts.Defect {
	if tbl.NumColumns() == i.rules.ExpectedColumns {
		return nil
	}
	return []contracts.Defect{contracts.NewCritical(id.Name,
		fmt.Sprintf("%s: expected %d columns, found %d", id.Name, i.rules.ExpectedColumns, tbl.NumColumns()))}
}

func (i *Inspector) checkNonEmpty(id contracts.FileIdentity, tbl *table.Table) []contracts.Defect {
	if tbl.NumRows() > 0 {
		return nil
	}
	return []contracts.Defect{contracts.NewCritical(id.Name,
		fmt.Sprintf("%s: empty file (0 rows)", id.Name))}
}

// checkTimestamps compares parsed timestamps to the file's partition.
// Vendor exports carry a couple of rows from the adjacent month, hence
// the tolerance.
func (i *Inspector) checkTimestamps(id contracts.FileIdentity, tbl *table.Table) []contracts.Defect {
	col := i.rules.TimestampColumn
	if !id.Resolved || tbl.NumRows() == 0 || !tbl.HasColumn(col) {
		return nil
	}

	var defects []contracts.Defect
	tc := tbl.Times(col)

	if len(tc.Parsed) > 0 {
		wrongYear, wrongMonth := 0, 0
		for _, ts := range tc.Parsed {
			if ts.Year != id.Year {
				wrongYear++
			}
			if ts.Month != id.Month {
				wrongMonth++
			}
		}

		tol := i.rules.DriftTolerance
		if wrongYear > tol || wrongMonth > tol {
			defects = append(defects, contracts.NewWarning(id.Name,
				fmt.Sprintf("%s: %d timestamps wrong year, %d wrong month (>%d = unexpected)",
					id.Name, wrongYear, wrongMonth, tol)))
		}
	}

	if tc.Unparseable > 0 {
		defects = append(defects, contracts.NewWarning(id.Name,
			fmt.Sprintf("%s: %d unparseable timestamps", id.Name, tc.Unparseable)))
	}

	return defects
}

// checkBounds resolves each bound prefix against the file's columns once,
// in the table's declared order, then counts strict violations.
func (i *Inspector) checkBounds(id contracts.FileIdentity, tbl *table.Table) []contracts.Defect {
	var defects []contracts.Defect
	columns := tbl.Columns()

	for _, spec := range i.rules.Bounds {
		for _, col := range columns {
			if !spec.Matches(col) {
				continue
			}

			below, above := countViolations(tbl.Floats(col), spec)
			if below == 0 && above == 0 {
				continue
			}

			defects = append(defects, contracts.NewWarning(id.Name,
				fmt.Sprintf("%s | %s (%s): %d below %s, %d above %s",
					id.Name, col, spec.Description, below, spec.MinLabel(), above, spec.MaxLabel())))
		}
	}

	return defects
}

// countViolations counts values strictly outside [Min, Max]; bounds are inclusive
func countViolations(values []float64, spec rules.BoundSpec) (below, above int) {
	for _, v := range values {
		if spec.Min != nil && v < *spec.Min {
			below++
		}
		if spec.Max != nil && v > *spec.Max {
			above++
		}
	}
	return below, above
}
