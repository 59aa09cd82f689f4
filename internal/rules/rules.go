package rules

import (
	"strconv"
	"strings"
)

// PartitionPolicy decides what happens to a file whose path has no
// resolvable year=/month= segments
type PartitionPolicy string

const (
	// PartitionDefect records a critical defect and keeps inspecting the file
	PartitionDefect PartitionPolicy = "defect"
	// PartitionAbort stops the whole run
	PartitionAbort PartitionPolicy = "abort"
	// PartitionSkip excludes the file from inspection; it still counts toward the file total
	PartitionSkip PartitionPolicy = "skip"
)

// Valid reports whether p is a known policy
func (p PartitionPolicy) Valid() bool {
	switch p {
	case PartitionDefect, PartitionAbort, PartitionSkip:
		return true
	}
	return false
}

// Default thresholds for the monthly solar export batch
const (
	DefaultExpectedFiles   = 131
	DefaultExpectedColumns = 107
	DefaultDriftTolerance  = 2
	DefaultTimestampColumn = "timestamp"
)

// Rules is the complete, immutable configuration of one validation run
// ⭐ SSOT: every threshold the inspector uses comes from here
type Rules struct {
	ExpectedFiles   int             `yaml:"expected_files" json:"expected_files"`
	ExpectedColumns int             `yaml:"expected_columns" json:"expected_columns"`
	DriftTolerance  int             `yaml:"drift_tolerance" json:"drift_tolerance"`
	TimestampColumn string          `yaml:"timestamp_column" json:"timestamp_column"`
	PartitionPolicy PartitionPolicy `yaml:"partition_policy" json:"partition_policy"`
	Bounds          []BoundSpec     `yaml:"bounds" json:"bounds"` // declared order is check order
}

// BoundSpec is the envelope range of one physical quantity, matched
// against columns by name prefix. Nil Min/Max means unbounded on that side.
type BoundSpec struct {
	Prefix      string   `yaml:"prefix" json:"prefix"`
	Min         *float64 `yaml:"min" json:"min"`
	Max         *float64 `yaml:"max" json:"max"`
	Unit        string   `yaml:"unit" json:"unit"`
	Description string   `yaml:"description" json:"description"`
}

// Matches reports whether column belongs to this quantity
func (b BoundSpec) Matches(column string) bool {
	return strings.HasPrefix(column, b.Prefix)
}

// MinLabel renders the lower bound with its unit, e.g. "-17.4°C"
func (b BoundSpec) MinLabel() string {
	return boundLabel(b.Min, b.Unit)
}

// MaxLabel renders the upper bound with its unit, e.g. "1500W/m²"
func (b BoundSpec) MaxLabel() string {
	return boundLabel(b.Max, b.Unit)
}

func boundLabel(v *float64, unit string) string {
	if v == nil {
		return "none"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

// Float returns a pointer to v, for building bound tables
func Float(v float64) *float64 {
	return &v
}

// DefaultBounds returns the envelope table: widest plausible range across
// all source instruments for each quantity
func DefaultBounds() []BoundSpec {
	return []BoundSpec{
		{Prefix: "G_H", Min: Float(0), Max: Float(1500), Unit: "W/m²", Description: "Global Horizontal Irradiance"},
		{Prefix: "G_M", Min: Float(0), Max: Float(1500), Unit: "W/m²", Description: "Module Plane Irradiance"},
		{Prefix: "T_U", Min: Float(-17.4), Max: Float(50), Unit: "°C", Description: "Ambient Temperature"},
		{Prefix: "T_M", Min: Float(-17.4), Max: Float(70), Unit: "°C", Description: "Module Temperature"},
		{Prefix: "T_WR", Min: Float(-17.4), Max: Float(80), Unit: "°C", Description: "Inverter Temperature"},
		{Prefix: "P_AC", Min: Float(0), Max: Float(5880), Unit: "W", Description: "AC Power"},
		{Prefix: "U_DC", Min: Float(0), Max: Float(548.5), Unit: "V", Description: "DC Voltage"},
		{Prefix: "U_AC", Min: Float(0), Max: Float(280), Unit: "V", Description: "AC Voltage"},
	}
}

// DefaultRules returns the built-in rules for the monthly batch
func DefaultRules() Rules {
	return Rules{
		ExpectedFiles:   DefaultExpectedFiles,
		ExpectedColumns: DefaultExpectedColumns,
		DriftTolerance:  DefaultDriftTolerance,
		TimestampColumn: DefaultTimestampColumn,
		PartitionPolicy: PartitionDefect,
		Bounds:          DefaultBounds(),
	}
}

// Clone returns a deep copy so callers never share bound pointers
func (r Rules) Clone() Rules {
	out := r
	out.Bounds = make([]BoundSpec, len(r.Bounds))
	for i, b := range r.Bounds {
		nb := b
		if b.Min != nil {
			nb.Min = Float(*b.Min)
		}
		if b.Max != nil {
			nb.Max = Float(*b.Max)
		}
		out.Bounds[i] = nb
	}
	return out
}
