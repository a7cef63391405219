package semtype

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/domain/core"
)

func TestInferType(t *testing.T) {
	ts := Default()

	cases := []struct {
		name   string
		values []any
		want   Type
	}{
		{"floats", []any{1.0, 2.5, -3.0}, Numeric},
		{"numeric strings", []any{"1.5", " 2 ", "-7"}, Numeric},
		{"ints with missing", []any{1, nil, 3}, Numeric},
		{"bools", []any{true, false}, Boolean},
		{"bool spellings", []any{"yes", "No", "true"}, Boolean},
		{"dates", []any{"2024-01-01", "2024-06-30"}, DateTime},
		{"times", []any{time.Now(), time.Now().Add(time.Hour)}, DateTime},
		{"urls", []any{"https://example.com/a", "http://x.org"}, URL},
		{"paths", []any{"/usr/local/bin", `C:\Users\x`}, Path},
		{"strings", []any{"red", "green", "blue"}, Categorical},
		{"mixed", []any{1, "red", true}, Unsupported},
		{"composites", []any{[]int{1}, map[string]int{"a": 1}}, Unsupported},
		{"all missing", []any{nil, math.NaN(), nil}, Unsupported},
		{"empty", nil, Unsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ts.InferType(tc.values))
		})
	}
}

func TestInferPrefersMostSpecific(t *testing.T) {
	ts := Default()
	// Boolean spellings are also valid strings; Boolean must win.
	assert.Equal(t, Boolean, ts.InferType([]any{"true", "false"}))
	// Numeric strings are also strings; Numeric must win.
	assert.Equal(t, Numeric, ts.InferType([]any{"1", "2"}))
}

func TestDetectType(t *testing.T) {
	ts := Default()
	assert.Equal(t, Numeric, ts.DetectType(KindNumeric))
	assert.Equal(t, Boolean, ts.DetectType(KindBool))
	assert.Equal(t, DateTime, ts.DetectType(KindTime))
	assert.Equal(t, Categorical, ts.DetectType(KindString))
	assert.Equal(t, Unsupported, ts.DetectType(KindObject))
}

func TestCastCoercesAndDropsFailures(t *testing.T) {
	out := Cast([]any{"1.5", "oops", nil, 2}, Numeric)
	assert.Equal(t, 1.5, out[0])
	assert.Nil(t, out[1])
	assert.Nil(t, out[2])
	assert.Equal(t, 2.0, out[3])

	bools := Cast([]any{"yes", false, "maybe"}, Boolean)
	assert.Equal(t, true, bools[0])
	assert.Equal(t, false, bools[1])
	assert.Nil(t, bools[2])
}

func TestNewRejectsDuplicateTypes(t *testing.T) {
	_, err := New([]Type{Numeric, Numeric}, nil)
	require.Error(t, err)
}

func TestNewRejectsUnknownEdgeEndpoints(t *testing.T) {
	_, err := New([]Type{Unsupported}, []Edge{{Unsupported, Numeric}})
	require.ErrorIs(t, err, core.ErrUnknownType)
}

func TestNewRejectsCycles(t *testing.T) {
	_, err := New(
		[]Type{Unsupported, Numeric, Categorical},
		[]Edge{
			{Unsupported, Numeric},
			{Numeric, Categorical},
			{Categorical, Numeric},
		},
	)
	require.ErrorIs(t, err, core.ErrTypeCycle)
}

func TestTopoEdgesRespectChains(t *testing.T) {
	ts := Default()
	edges := ts.TopoEdges()
	require.Len(t, edges, 9)

	position := func(e Edge) int {
		for i, known := range edges {
			if known == e {
				return i
			}
		}
		t.Fatalf("edge %v not found", e)
		return -1
	}
	// An edge into a type precedes every edge out of it.
	assert.Less(t,
		position(Edge{Unsupported, Categorical}),
		position(Edge{Categorical, Boolean}))
	assert.Less(t,
		position(Edge{Unsupported, Categorical}),
		position(Edge{Categorical, URL}))
	assert.Less(t,
		position(Edge{Unsupported, Categorical}),
		position(Edge{Categorical, Path}))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(math.NaN()))
	assert.True(t, IsMissing(float32(math.NaN())))
	assert.False(t, IsMissing(0.0))
	assert.False(t, IsMissing(""))
}

func TestContainsAndRelations(t *testing.T) {
	ts := Default()
	assert.True(t, ts.Contains(Boolean))
	assert.False(t, ts.Contains(Type("Fancy")))
	assert.Equal(t, []Type{Categorical}, ts.Parents(Boolean))
	assert.ElementsMatch(t, []Type{Boolean, URL, Path}, ts.Children(Categorical))
}
