package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()

	assert.Equal(t, 131, r.ExpectedFiles)
	assert.Equal(t, 107, r.ExpectedColumns)
	assert.Equal(t, 2, r.DriftTolerance)
	assert.Equal(t, "timestamp", r.TimestampColumn)
	assert.Equal(t, PartitionDefect, r.PartitionPolicy)
	require.NoError(t, Validate(&r))

	prefixes := make([]string, 0, len(r.Bounds))
	for _, b := range r.Bounds {
		prefixes = append(prefixes, b.Prefix)
	}
	assert.Equal(t, []string{"G_H", "G_M", "T_U", "T_M", "T_WR", "P_AC", "U_DC", "U_AC"}, prefixes)
}

func TestBoundSpec_Labels(t *testing.T) {
	tests := []struct {
		name    string
		spec    BoundSpec
		wantMin string
		wantMax string
	}{
		{"integer bounds", BoundSpec{Min: Float(0), Max: Float(1500), Unit: "W/m²"}, "0W/m²", "1500W/m²"},
		{"fractional bounds", BoundSpec{Min: Float(-17.4), Max: Float(548.5), Unit: "V"}, "-17.4V", "548.5V"},
		{"open upper bound", BoundSpec{Min: Float(0), Unit: "W"}, "0W", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMin, tt.spec.MinLabel())
			assert.Equal(t, tt.wantMax, tt.spec.MaxLabel())
		})
	}
}

func TestBoundSpec_Matches(t *testing.T) {
	spec := BoundSpec{Prefix: "T_M"}

	assert.True(t, spec.Matches("T_M"))
	assert.True(t, spec.Matches("T_M1 (WR 3)"))
	assert.False(t, spec.Matches("t_m1"))
	assert.False(t, spec.Matches("XT_M"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *Rules)
		field string
	}{
		{"negative files", func(r *Rules) { r.ExpectedFiles = -1 }, "expected_files"},
		{"negative columns", func(r *Rules) { r.ExpectedColumns = -1 }, "expected_columns"},
		{"negative tolerance", func(r *Rules) { r.DriftTolerance = -1 }, "drift_tolerance"},
		{"unknown policy", func(r *Rules) { r.PartitionPolicy = "ignore" }, "partition_policy"},
		{"empty prefix", func(r *Rules) { r.Bounds[0].Prefix = "" }, "bounds[0].prefix"},
		{"duplicate prefix", func(r *Rules) { r.Bounds[1].Prefix = "G_H" }, "bounds[1].prefix"},
		{"no bounds at all", func(r *Rules) { r.Bounds[2].Min, r.Bounds[2].Max = nil, nil }, "bounds[2]"},
		{"inverted range", func(r *Rules) { r.Bounds[3].Min = Float(100) }, "bounds[3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.edit(&r)

			err := Validate(&r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRules))

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	r, err := Load("testdata/strict.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12, r.ExpectedFiles)
	assert.Equal(t, 5, r.ExpectedColumns)
	assert.Equal(t, 0, r.DriftTolerance)
	assert.Equal(t, "ts", r.TimestampColumn)
	assert.Equal(t, PartitionAbort, r.PartitionPolicy)

	require.Len(t, r.Bounds, 2)
	assert.Equal(t, "G_H", r.Bounds[0].Prefix)
	assert.Equal(t, 1400.0, *r.Bounds[0].Max)
	assert.Equal(t, -20.0, *r.Bounds[1].Min)
	assert.Nil(t, r.Bounds[1].Max)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load("testdata/unknown_field.yaml")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does_not_exist.yaml")
	assert.Error(t, err)
}

func TestParse_KeepsDefaults(t *testing.T) {
	r, err := Parse([]byte("expected_files: 130\n"))
	require.NoError(t, err)

	assert.Equal(t, 130, r.ExpectedFiles)
	assert.Equal(t, DefaultExpectedColumns, r.ExpectedColumns)
	assert.Len(t, r.Bounds, 8)
}

func TestParse_InvalidRules(t *testing.T) {
	_, err := Parse([]byte("partition_policy: maybe\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRules))
}

func TestHash(t *testing.T) {
	a := DefaultRules()
	b := DefaultRules()

	hashA, err := Hash(&a)
	require.NoError(t, err)
	assert.Len(t, hashA, 64)

	hashB, err := Hash(&b)
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB, "same rules must hash the same")

	b.ExpectedFiles = 130
	hashC, err := Hash(&b)
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashC)
}

func TestClone(t *testing.T) {
	orig := DefaultRules()
	cp := orig.Clone()

	*cp.Bounds[0].Max = 1
	cp.Bounds[1].Prefix = "X"

	assert.Equal(t, 1500.0, *orig.Bounds[0].Max)
	assert.Equal(t, "G_M", orig.Bounds[1].Prefix)
}
