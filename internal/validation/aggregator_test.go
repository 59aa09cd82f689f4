package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

func fileResult(name string, rows int64, defects ...contracts.Defect) contracts.FileResult {
	return contracts.FileResult{
		Identity: contracts.FileIdentity{Path: "root/" + name, Name: name, Year: 2013, Month: 2, Resolved: true},
		Rows:     rows,
		Columns:  107,
		Defects:  defects,
	}
}

func TestAggregator_Begin(t *testing.T) {
	t.Run("matching count", func(t *testing.T) {
		agg := NewAggregator(131)
		_, failed, err := agg.Begin(131)
		require.NoError(t, err)
		assert.False(t, failed)

		report := agg.Seal()
		assert.Equal(t, 131, report.TotalFiles)
		assert.Empty(t, report.CriticalFailures)
	})

	t.Run("mismatch", func(t *testing.T) {
		agg := NewAggregator(131)
		d, failed, err := agg.Begin(130)
		require.NoError(t, err)
		assert.True(t, failed)
		assert.Equal(t, "File count mismatch: expected 131, found 130", d.Message)
		assert.Empty(t, d.FileName)

		report := agg.Seal()
		assert.Equal(t, []contracts.Defect{d}, report.CriticalFailures)
	})
}

func TestAggregator_RecordOrder(t *testing.T) {
	agg := NewAggregator(2)
	_, _, err := agg.Begin(3)
	require.NoError(t, err)

	require.NoError(t, agg.Record(fileResult("a.parquet", 10,
		contracts.NewCritical("a.parquet", "a: schema"),
		contracts.NewWarning("a.parquet", "a: drift"),
		contracts.NewWarning("a.parquet", "a: bounds"),
	)))
	require.NoError(t, agg.Record(fileResult("b.parquet", 5,
		contracts.NewCritical("b.parquet", "b: empty"),
	)))
	require.NoError(t, agg.Record(contracts.FileResult{
		Identity: contracts.FileIdentity{Name: "c.parquet"},
		Skipped:  true,
	}))

	report := agg.Seal()

	assert.Equal(t, []string{"File count mismatch: expected 2, found 3", "a: schema", "b: empty"},
		messages(report.CriticalFailures))
	assert.Equal(t, []string{"a: drift", "a: bounds"}, messages(report.Warnings))
	assert.Equal(t, int64(15), report.TotalRows)
	require.Len(t, report.FilesValidated, 2)
	assert.Equal(t, "a.parquet", report.FilesValidated[0].File)
	assert.Equal(t, "b.parquet", report.FilesValidated[1].File)
	assert.False(t, report.Passed())
}

func TestAggregator_Sealed(t *testing.T) {
	agg := NewAggregator(1)
	_, _, err := agg.Begin(1)
	require.NoError(t, err)
	report := agg.Seal()

	assert.ErrorIs(t, agg.Record(fileResult("late.parquet", 1)), ErrSealed)
	assert.ErrorIs(t, agg.Append(contracts.NewWarning("", "late")), ErrSealed)
	_, _, err = agg.Begin(1)
	assert.ErrorIs(t, err, ErrSealed)

	assert.Empty(t, report.FilesValidated)
	assert.Empty(t, report.Warnings)
}

func TestAggregator_EmptyReportIsNotNil(t *testing.T) {
	report := NewAggregator(0).Seal()

	assert.NotNil(t, report.CriticalFailures)
	assert.NotNil(t, report.Warnings)
	assert.NotNil(t, report.FilesValidated)
	assert.True(t, report.Passed())
}
