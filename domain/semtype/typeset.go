package semtype

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"goprofile/domain/core"
)

// TypeSet is the type-inference engine: a DAG of semantic types with
// value-level inference, storage-level detection and casting.
//
// A TypeSet is immutable after construction and safe for concurrent use.
type TypeSet struct {
	types    []Type
	edges    []Edge
	children map[Type][]Type
	parents  map[Type][]Type

	// Edges of the hierarchy ordered topologically over the line graph:
	// an edge appears only after every edge feeding its parent. This is the
	// order the summarizer registry closes its step lists in.
	topoEdges []Edge

	// Inference candidates, most specific first.
	candidates []Type
}

// DefaultHierarchy returns the standard profiling hierarchy: Unsupported at
// the root, the batch sub-hierarchy parallel to it.
func DefaultHierarchy() ([]Type, []Edge) {
	types := []Type{
		Unsupported, Numeric, DateTime, Categorical, Boolean, URL, Path,
		BatchUnsupported, BatchNumeric, BatchCategorical, BatchBoolean,
	}
	edges := []Edge{
		{Unsupported, Numeric},
		{Unsupported, DateTime},
		{Unsupported, Categorical},
		{Categorical, Boolean},
		{Categorical, URL},
		{Categorical, Path},
		{BatchUnsupported, BatchNumeric},
		{BatchUnsupported, BatchCategorical},
		{BatchUnsupported, BatchBoolean},
	}
	return types, edges
}

// Default builds the standard TypeSet. Panics only if the built-in hierarchy
// is invalid, which would be a programming error.
func Default() *TypeSet {
	types, edges := DefaultHierarchy()
	ts, err := New(types, edges)
	if err != nil {
		panic(fmt.Sprintf("semtype: default hierarchy invalid: %v", err))
	}
	return ts
}

// New validates the hierarchy (known endpoints, acyclic) and precomputes the
// topological edge order used for summary-map closure.
func New(types []Type, edges []Edge) (*TypeSet, error) {
	known := make(map[Type]bool, len(types))
	for _, t := range types {
		if known[t] {
			return nil, fmt.Errorf("semtype: duplicate type %q", t)
		}
		known[t] = true
	}

	ts := &TypeSet{
		types:      append([]Type(nil), types...),
		edges:      append([]Edge(nil), edges...),
		children:   make(map[Type][]Type),
		parents:    make(map[Type][]Type),
		candidates: []Type{Boolean, Numeric, DateTime, URL, Path, Categorical},
	}
	for _, e := range edges {
		if !known[e.Parent] {
			return nil, fmt.Errorf("%w: edge parent %q", core.ErrUnknownType, e.Parent)
		}
		if !known[e.Child] {
			return nil, fmt.Errorf("%w: edge child %q", core.ErrUnknownType, e.Child)
		}
		ts.children[e.Parent] = append(ts.children[e.Parent], e.Child)
		ts.parents[e.Child] = append(ts.parents[e.Child], e.Parent)
	}

	if err := ts.checkAcyclic(); err != nil {
		return nil, err
	}
	topoEdges, err := ts.sortEdges()
	if err != nil {
		return nil, err
	}
	ts.topoEdges = topoEdges
	return ts, nil
}

// checkAcyclic runs a topological sort over the base graph.
func (ts *TypeSet) checkAcyclic() error {
	index := make(map[Type]int64, len(ts.types))
	g := simple.NewDirectedGraph()
	for i, t := range ts.types {
		index[t] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range ts.edges {
		g.SetEdge(simple.Edge{F: simple.Node(index[e.Parent]), T: simple.Node(index[e.Child])})
	}
	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("%w: %v", core.ErrTypeCycle, err)
	}
	return nil
}

// sortEdges orders hierarchy edges topologically over the line graph: the
// graph whose nodes are the edges of the hierarchy, with (a→b) preceding
// (b→c). Processing edges in this order guarantees a parent's summary chain
// is fully closed before it propagates to children, so a single pass closes
// the whole map.
func (ts *TypeSet) sortEdges() ([]Edge, error) {
	lg := simple.NewDirectedGraph()
	for i := range ts.edges {
		lg.AddNode(simple.Node(int64(i)))
	}
	for i, a := range ts.edges {
		for j, b := range ts.edges {
			if i != j && a.Child == b.Parent {
				lg.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
			}
		}
	}
	order, err := topo.Sort(lg)
	if err != nil {
		// Line graph of a DAG is a DAG; reaching this means the base
		// hierarchy was corrupted after validation.
		return nil, fmt.Errorf("%w: line graph not sortable: %v", core.ErrTypeCycle, err)
	}
	sorted := make([]Edge, 0, len(order))
	for _, n := range order {
		sorted = append(sorted, ts.edges[n.ID()])
	}
	return sorted, nil
}

// Types returns all types in the hierarchy.
func (ts *TypeSet) Types() []Type { return append([]Type(nil), ts.types...) }

// TopoEdges returns hierarchy edges in closure order.
func (ts *TypeSet) TopoEdges() []Edge { return append([]Edge(nil), ts.topoEdges...) }

// Parents returns the declared parents of a type.
func (ts *TypeSet) Parents(t Type) []Type { return ts.parents[t] }

// Children returns the declared children of a type.
func (ts *TypeSet) Children(t Type) []Type { return ts.children[t] }

// Contains reports whether the type belongs to this hierarchy.
func (ts *TypeSet) Contains(t Type) bool {
	for _, known := range ts.types {
		if known == t {
			return true
		}
	}
	return false
}

// InferType inspects values and returns the most specific matching semantic
// type: candidates are checked most-specific-first and the first type whose
// predicate holds for every non-missing value wins. Columns with no
// non-missing values, or matching no candidate, fall back to Unsupported.
// InferType never fails.
func (ts *TypeSet) InferType(values []any) Type {
	present := 0
	for _, v := range values {
		if !IsMissing(v) {
			present++
		}
	}
	if present == 0 {
		return Unsupported
	}
	for _, candidate := range ts.candidates {
		if matchesAll(values, predicateFor(candidate)) {
			return candidate
		}
	}
	return Unsupported
}

// DetectType maps a column's declared storage kind to a semantic type without
// inspecting values. Used when inference is disabled.
func (ts *TypeSet) DetectType(kind Kind) Type {
	switch kind {
	case KindNumeric:
		return Numeric
	case KindBool:
		return Boolean
	case KindTime:
		return DateTime
	case KindString:
		return Categorical
	default:
		return Unsupported
	}
}

// CastToInferred coerces values to the canonical representation of the
// inferred type (numeric strings become float64, boolean spellings become
// bool, parseable strings become time.Time). Missing cells stay nil; values
// that fail to coerce become missing rather than erroring.
func (ts *TypeSet) CastToInferred(values []any) ([]any, Type) {
	inferred := ts.InferType(values)
	return Cast(values, inferred), inferred
}

// Cast coerces values to the canonical representation of t.
func Cast(values []any, t Type) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if IsMissing(v) {
			out[i] = nil
			continue
		}
		switch t {
		case Numeric:
			if f, ok := AsNumeric(v); ok {
				out[i] = f
			} else {
				out[i] = nil
			}
		case Boolean:
			if b, ok := AsBool(v); ok {
				out[i] = b
			} else {
				out[i] = nil
			}
		case DateTime:
			if tm, ok := AsTime(v); ok {
				out[i] = tm
			} else {
				out[i] = nil
			}
		default:
			out[i] = v
		}
	}
	return out
}

// matchesAll reports whether the predicate holds for every non-missing value.
func matchesAll(values []any, pred func(any) bool) bool {
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if !pred(v) {
			return false
		}
	}
	return true
}

func predicateFor(t Type) func(any) bool {
	switch t {
	case Boolean:
		return func(v any) bool { _, ok := AsBool(v); return ok }
	case Numeric:
		return func(v any) bool { _, ok := AsNumeric(v); return ok }
	case DateTime:
		return func(v any) bool { _, ok := AsTime(v); return ok }
	case URL:
		return isURL
	case Path:
		return isPath
	case Categorical:
		return isString
	default:
		return func(any) bool { return false }
	}
}
