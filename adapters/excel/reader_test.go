package excel

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"goprofile/domain/core"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/internal/describe"
	"goprofile/internal/errors"
)

func TestReadCSV(t *testing.T) {
	input := strings.NewReader(
		"name,age,city\n" +
			"alice,34,berlin\n" +
			"bob,,paris\n" +
			"carol,51,\n")

	tbl, err := ReadCSV(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "city"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())

	age, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Nil(t, age.Values()[1])
	assert.Equal(t, "34", age.Values()[0])
}

func TestReadCSVRaggedRowsArePadded(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	require.NoError(t, err)

	b, _ := tbl.Column("b")
	assert.Equal(t, "2", b.Values()[0])
	assert.Nil(t, b.Values()[1])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestReadCSVBlankHeaderGetsName(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,,c\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2", "c"}, tbl.ColumnNames())
}

func TestReadFileRejectsUnknownExtension(t *testing.T) {
	_, err := ReadFile("data.parquet")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedInput, errors.GetCode(err))
}

func TestReadWorkbookRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"score", "grade"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1.5, "a"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2.5, "b"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{4.0, "b"}))

	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "grade"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())

	// Workbook cells arrive as strings; inference recovers the numerics.
	vars, err := describe.NewDescriber(config.Default()).DescribeColumns(context.Background(), tbl)
	require.NoError(t, err)
	score, _ := vars.Get("score")
	assert.Equal(t, semtype.Numeric, score.Type())
	assert.InDelta(t, 8.0/3.0, score["mean"], 1e-12)
}
