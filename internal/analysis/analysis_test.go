package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/adapters/memtable"
	"goprofile/domain/profile"
	"goprofile/internal/config"
	"goprofile/internal/describe"
)

func describeTable(t *testing.T, tbl *memtable.Table, cfg config.Config) *profile.Variables {
	t.Helper()
	vars, err := describe.NewDescriber(cfg).DescribeColumns(context.Background(), tbl)
	require.NoError(t, err)
	return vars
}

func TestCorrelationsPerfectlyLinearColumns(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.FloatColumn("x", []float64{1, 2, 3, 4, 5}),
		memtable.FloatColumn("y", []float64{2, 4, 6, 8, 10}),
		memtable.FloatColumn("z", []float64{5, 4, 3, 2, 1}),
	)
	vars := describeTable(t, tbl, cfg)

	out, err := Correlations(context.Background(), tbl, vars, cfg)
	require.NoError(t, err)

	pearson := out["pearson"]
	require.Equal(t, []string{"x", "y", "z"}, pearson.Columns)
	assert.InDelta(t, 1.0, pearson.Values[0][1], 1e-12)
	assert.InDelta(t, -1.0, pearson.Values[0][2], 1e-12)
	assert.InDelta(t, 1.0, pearson.Values[0][0], 1e-12)
	// Symmetry.
	assert.Equal(t, pearson.Values[1][0], pearson.Values[0][1])

	spearman := out["spearman"]
	assert.InDelta(t, 1.0, spearman.Values[0][1], 1e-12)
	kendall := out["kendall"]
	assert.InDelta(t, -1.0, kendall.Values[0][2], 1e-12)
}

func TestCorrelationsSkipMissingPairs(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.FloatColumn("a", []float64{1, 2, math.NaN(), 4}),
		memtable.FloatColumn("b", []float64{1, 2, 100, 4}),
	)
	vars := describeTable(t, tbl, cfg)

	out, err := Correlations(context.Background(), tbl, vars, cfg)
	require.NoError(t, err)
	// The NaN row is excluded, leaving a perfectly linear pair.
	assert.InDelta(t, 1.0, out["pearson"].Values[0][1], 1e-12)
}

func TestCorrelationsOmitMethodsWithTooFewColumns(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(memtable.FloatColumn("only", []float64{1, 2, 3}))
	vars := describeTable(t, tbl, cfg)

	out, err := Correlations(context.Background(), tbl, vars, cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "pearson")
	assert.NotContains(t, out, "cramers")
}

func TestCramersVAssociatedCategories(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.StringColumn("u", []string{"a", "a", "b", "b", "a", "b"}),
		memtable.StringColumn("v", []string{"x", "x", "y", "y", "x", "y"}),
	)
	vars := describeTable(t, tbl, cfg)

	out, err := Correlations(context.Background(), tbl, vars, cfg)
	require.NoError(t, err)
	cramers, ok := out["cramers"]
	require.True(t, ok)
	assert.InDelta(t, 1.0, cramers.Values[0][1], 1e-12)
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{1.5, 1.5, 3}, ranks([]float64{5, 5, 9}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{30, 10, 20}))
}

func TestMissingDiagramsEmptyWithoutMissingCells(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(memtable.FloatColumn("x", []float64{1, 2}))
	vars := describeTable(t, tbl, cfg)

	assert.Empty(t, MissingDiagrams(tbl, vars, cfg))
}

func TestMissingDiagramsPayloads(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.AnyColumn("a", []any{1.0, nil, 3.0, nil}),
		memtable.AnyColumn("b", []any{nil, nil, "x", "y"}),
		memtable.FloatColumn("c", []float64{1, 2, 3, 4}),
	)
	vars := describeTable(t, tbl, cfg)

	out := MissingDiagrams(tbl, vars, cfg)
	require.Contains(t, out, "bar")
	require.Contains(t, out, "matrix")
	require.Contains(t, out, "heatmap")

	bar := out["bar"].Data.(MissingBar)
	assert.Equal(t, []string{"a", "b", "c"}, bar.Columns)
	assert.Equal(t, []int{2, 2, 4}, bar.Counts)

	matrix := out["matrix"].Data.(MissingMatrix)
	require.Len(t, matrix.Present, 4)
	assert.Equal(t, []bool{true, false, true}, matrix.Present[0])
	assert.Equal(t, []bool{false, false, true}, matrix.Present[1])

	heatmap := out["heatmap"].Data.(profile.CorrelationMatrix)
	// Only the columns with missing cells take part.
	assert.Equal(t, []string{"a", "b"}, heatmap.Columns)
}

func TestMissingHeatmapNeedsTwoColumnsWithMissing(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.AnyColumn("a", []any{1.0, nil}),
		memtable.FloatColumn("b", []float64{1, 2}),
	)
	vars := describeTable(t, tbl, cfg)

	out := MissingDiagrams(tbl, vars, cfg)
	assert.Contains(t, out, "bar")
	assert.NotContains(t, out, "heatmap")
}

func TestScatterPairsCompleteObservations(t *testing.T) {
	cfg := config.Default()
	tbl := memtable.MustNew(
		memtable.FloatColumn("x", []float64{1, 2, math.NaN()}),
		memtable.FloatColumn("y", []float64{10, 20, 30}),
		memtable.StringColumn("s", []string{"a", "b", "c"}),
	)
	vars := describeTable(t, tbl, cfg)

	out := Scatter(tbl, vars, cfg)
	require.Contains(t, out, "x")
	assert.NotContains(t, out, "s")

	points := out["x"]["y"]
	require.Len(t, points, 2)
	assert.Equal(t, profile.Point{X: 1, Y: 10}, points[0])
	assert.Equal(t, profile.Point{X: 2, Y: 20}, points[1])
}

func TestScatterRespectsTargets(t *testing.T) {
	cfg := config.Default()
	cfg.Interactions.Targets = []string{"y"}
	tbl := memtable.MustNew(
		memtable.FloatColumn("x", []float64{1, 2}),
		memtable.FloatColumn("y", []float64{3, 4}),
	)
	vars := describeTable(t, tbl, cfg)

	out := Scatter(tbl, vars, cfg)
	assert.NotContains(t, out, "x")
	require.Contains(t, out, "y")
	// The y axis still spans every continuous column.
	assert.Len(t, out["y"], 2)
}

func TestScatterDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Interactions.Continuous = false
	tbl := memtable.MustNew(memtable.FloatColumn("x", []float64{1, 2}))
	vars := describeTable(t, tbl, cfg)

	assert.Empty(t, Scatter(tbl, vars, cfg))
}
