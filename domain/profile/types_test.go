package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/domain/semtype"
)

func sampleVariables() *Variables {
	v := NewVariables()
	v.Set("delta", ColumnDescription{"n": 1})
	v.Set("Alpha", ColumnDescription{"n": 2})
	v.Set("bravo", ColumnDescription{"n": 3})
	return v
}

func TestVariablesKeepInsertionOrder(t *testing.T) {
	v := sampleVariables()
	assert.Equal(t, []string{"delta", "Alpha", "bravo"}, v.Names())
	assert.Equal(t, 3, v.Len())

	// Replacing keeps the original position.
	v.Set("Alpha", ColumnDescription{"n": 20})
	assert.Equal(t, []string{"delta", "Alpha", "bravo"}, v.Names())
	desc, ok := v.Get("Alpha")
	require.True(t, ok)
	assert.Equal(t, 20, desc["n"])
}

func TestVariablesSortByNameIsCaseInsensitive(t *testing.T) {
	v := sampleVariables()
	v.SortByName(false)
	assert.Equal(t, []string{"Alpha", "bravo", "delta"}, v.Names())

	v.SortByName(true)
	assert.Equal(t, []string{"delta", "bravo", "Alpha"}, v.Names())
}

func TestVariablesReorder(t *testing.T) {
	v := sampleVariables()
	v.Reorder([]string{"bravo", "missing", "delta"})
	// Unknown names are dropped, unlisted columns keep relative order at the end.
	assert.Equal(t, []string{"bravo", "delta", "Alpha"}, v.Names())
}

func TestVariablesJSONPreservesOrder(t *testing.T) {
	v := sampleVariables()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"delta":{"n":1},"Alpha":{"n":2},"bravo":{"n":3}}`,
		string(payload))
	// Key order must match iteration order, not be alphabetical.
	assert.Equal(t,
		`{"delta":{"n":1},"Alpha":{"n":2},"bravo":{"n":3}}`,
		string(payload))

	var restored Variables
	require.NoError(t, json.Unmarshal(payload, &restored))
	assert.Equal(t, []string{"delta", "Alpha", "bravo"}, restored.Names())
}

func TestColumnDescriptionAccessors(t *testing.T) {
	desc := ColumnDescription{
		"type":      semtype.Numeric,
		"n":         10,
		"n_missing": 3,
	}
	assert.Equal(t, semtype.Numeric, desc.Type())
	assert.Equal(t, 10, desc.N())
	assert.Equal(t, 3, desc.NMissing())

	empty := ColumnDescription{}
	assert.Equal(t, semtype.Unsupported, empty.Type())
	assert.Zero(t, empty.N())
	assert.Zero(t, empty.NMissing())
}

func TestTableStatsAccessors(t *testing.T) {
	stats := TableStats{
		"n":     42,
		"types": map[semtype.Type]int{semtype.Numeric: 2},
	}
	assert.Equal(t, 42, stats.N())
	assert.Equal(t, 2, stats.TypeCounts()[semtype.Numeric])
}

func TestMessageString(t *testing.T) {
	table := Message{Type: MessageDuplicates}
	assert.Equal(t, "[DUPLICATES] table", table.String())

	column := Message{Type: MessageConstant, Column: "x"}
	assert.Equal(t, `[CONSTANT] column "x"`, column.String())
}
