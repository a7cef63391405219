package memtable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/domain/core"
	"goprofile/ports"
)

func TestNewValidation(t *testing.T) {
	_, err := New(
		FloatColumn("x", []float64{1}),
		FloatColumn("x", []float64{2}),
	)
	require.ErrorIs(t, err, core.ErrDuplicateColumn)

	_, err = New(
		FloatColumn("x", []float64{1, 2}),
		FloatColumn("y", []float64{1}),
	)
	require.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestTableBasics(t *testing.T) {
	tbl := MustNew(
		FloatColumn("x", []float64{1, 2, 3}),
		StringColumn("s", []string{"a", "b", "c"}),
	)

	assert.Equal(t, ports.EngineMemory, tbl.Engine())
	assert.Equal(t, []string{"x", "s"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())

	col, ok := tbl.Column("s")
	require.True(t, ok)
	assert.Equal(t, "b", col.Values()[1])

	_, ok = tbl.Column("nope")
	assert.False(t, ok)
}

func TestDuplicateRows(t *testing.T) {
	tbl := MustNew(
		FloatColumn("x", []float64{1, 1, 2, 1, 2}),
		StringColumn("s", []string{"a", "a", "b", "a", "c"}),
	)

	count, err := tbl.DuplicateRowCount([]string{"x", "s"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows, err := tbl.DuplicateRows([]string{"x", "s"}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, 1.0, rows[0].Row["x"])
	assert.Equal(t, "a", rows[0].Row["s"])
}

func TestDuplicateRowsMissingCellsGroupTogether(t *testing.T) {
	tbl := MustNew(FloatColumn("x", []float64{math.NaN(), math.NaN(), 1}))

	count, err := tbl.DuplicateRowCount([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDuplicateRowsUnknownColumn(t *testing.T) {
	tbl := MustNew(FloatColumn("x", []float64{1}))
	_, err := tbl.DuplicateRowCount([]string{"ghost"})
	require.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestHeadAndTail(t *testing.T) {
	tbl := MustNew(FloatColumn("x", []float64{1, 2, 3, 4, 5}))

	head := tbl.Head(2)
	require.Len(t, head, 2)
	assert.Equal(t, 1.0, head[0][0])

	tail := tbl.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, 4.0, tail[0][0])

	assert.Len(t, tbl.Head(100), 5)
	assert.Len(t, tbl.Tail(100), 5)
}

func TestMemoryUsageDeepCountsStrings(t *testing.T) {
	tbl := MustNew(StringColumn("s", []string{"abcd", "efgh"}))
	shallow := tbl.MemoryUsage(false)
	deep := tbl.MemoryUsage(true)
	assert.Equal(t, shallow+8, deep)
}
