// Package describe implements the type-dispatch summarization pipeline: a
// registry mapping semantic types to ordered summary-step chains, closed over
// the type hierarchy, composed per column and fanned out across a table.
package describe

import (
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/internal/errors"
	"goprofile/ports"
)

// Step is one unit of statistic computation. It receives the data and the
// description accumulated so far (which may include a type tag refined by an
// earlier step) and returns the possibly-updated type tag and description.
// Steps must not rely on keys they did not set except those documented by
// earlier steps in their chain; later steps may overwrite keys deliberately.
type Step[D, R any] func(data D, t semtype.Type, acc R) (semtype.Type, R, error)

// ColumnStep summarizes a single column (memory engine).
type ColumnStep = Step[ports.Column, profile.ColumnDescription]

// GroupStep summarizes a same-type column group in one call (batch engine).
type GroupStep = Step[[]ports.Column, GroupDescriptions]

// GroupDescriptions maps column name to its accumulating description within
// one batch call.
type GroupDescriptions map[string]profile.ColumnDescription

// Compose chains steps into one: a strict left-to-right fold threading the
// (type, accumulator) pair through each step in list order. Step order is
// significant: later steps depend on keys set by earlier ones. An empty
// list composes to the identity.
func Compose[D, R any](steps []Step[D, R]) Step[D, R] {
	return func(data D, t semtype.Type, acc R) (semtype.Type, R, error) {
		var err error
		for _, step := range steps {
			t, acc, err = step(data, t, acc)
			if err != nil {
				return t, acc, err
			}
		}
		return t, acc, nil
	}
}

// Summarizer maps semantic types to summary chains. The mapping is closed at
// construction by walking the type hierarchy so that steps declared for a
// supertype are inherited (prepended) by its subtypes; after closure the
// mapping is immutable for the lifetime of a report run.
type Summarizer struct {
	typeset   *semtype.TypeSet
	columnMap map[semtype.Type][]ColumnStep
	groupMap  map[semtype.Type][]GroupStep
	closed    bool
}

// NewSummarizer builds a registry from base step mappings and closes it.
// Lists may be empty or absent, meaning "inherit only".
func NewSummarizer(
	typeset *semtype.TypeSet,
	columnMap map[semtype.Type][]ColumnStep,
	groupMap map[semtype.Type][]GroupStep,
) *Summarizer {
	s := &Summarizer{
		typeset:   typeset,
		columnMap: make(map[semtype.Type][]ColumnStep, len(columnMap)),
		groupMap:  make(map[semtype.Type][]GroupStep, len(groupMap)),
	}
	for t, steps := range columnMap {
		s.columnMap[t] = append([]ColumnStep(nil), steps...)
	}
	for t, steps := range groupMap {
		s.groupMap[t] = append([]GroupStep(nil), steps...)
	}
	s.completeSummaries()
	return s
}

// completeSummaries closes the step mappings: hierarchy edges are processed
// in topological order of the line graph, prepending each parent's (already
// closed) list to its child's. One pass suffices; the closed flag makes the
// operation idempotent so repeated calls never duplicate steps.
func (s *Summarizer) completeSummaries() {
	if s.closed {
		return
	}
	for _, edge := range s.typeset.TopoEdges() {
		if parent, ok := s.columnMap[edge.Parent]; ok || len(s.columnMap[edge.Child]) > 0 {
			s.columnMap[edge.Child] = concatSteps(parent, s.columnMap[edge.Child])
		}
		if parent, ok := s.groupMap[edge.Parent]; ok || len(s.groupMap[edge.Child]) > 0 {
			s.groupMap[edge.Child] = concatSteps(parent, s.groupMap[edge.Child])
		}
	}
	s.closed = true
}

func concatSteps[D, R any](parent, child []Step[D, R]) []Step[D, R] {
	out := make([]Step[D, R], 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}

// ColumnChain returns the closed chain for a type; an unknown type yields an
// empty (identity) chain rather than an error.
func (s *Summarizer) ColumnChain(t semtype.Type) []ColumnStep {
	return s.columnMap[t]
}

// GroupChain returns the closed batch chain for a type.
func (s *Summarizer) GroupChain(t semtype.Type) []GroupStep {
	return s.groupMap[t]
}

// SummarizeColumn composes and runs the chain for t over one column. The
// description is seeded with the type tag; a type with no chain (and no
// ancestor chain) degrades to the seed description.
func (s *Summarizer) SummarizeColumn(col ports.Column, t semtype.Type) (profile.ColumnDescription, error) {
	chain := Compose(s.ColumnChain(t))
	_, desc, err := chain(col, t, profile.ColumnDescription{"type": t})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// SummarizeGroup composes and runs the batch chain for t over a same-type
// column group; each column gets its own seeded description.
func (s *Summarizer) SummarizeGroup(cols []ports.Column, t semtype.Type) (map[string]profile.ColumnDescription, error) {
	acc := make(GroupDescriptions, len(cols))
	for _, col := range cols {
		acc[col.Name()] = profile.ColumnDescription{"type": t}
	}
	chain := Compose(s.GroupChain(t))
	_, out, err := chain(cols, t, acc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize dispatches on the engine name. The memory engine expects a
// single ports.Column, the batch engine a []ports.Column group; an
// unrecognised engine fails.
func (s *Summarizer) Summarize(data any, engine string, t semtype.Type) (any, error) {
	switch engine {
	case ports.EngineMemory:
		col, ok := data.(ports.Column)
		if !ok {
			return nil, errors.InvalidInput("memory engine expects a single column")
		}
		return s.SummarizeColumn(col, t)
	case ports.EngineBatch:
		cols, ok := data.([]ports.Column)
		if !ok {
			return nil, errors.InvalidInput("batch engine expects a column group")
		}
		return s.SummarizeGroup(cols, t)
	default:
		return nil, errors.UnknownEngine(engine)
	}
}

// NewProfilingSummarizer builds the standard registry: counts and memory
// accounting at the roots, distinct/type-specific statistics on the
// supported branches, batch equivalents on the batch sub-hierarchy.
func NewProfilingSummarizer(typeset *semtype.TypeSet, cfg config.Config) *Summarizer {
	columnMap := map[semtype.Type][]ColumnStep{
		semtype.Unsupported: {
			describeCounts(cfg),
			describeGeneric(cfg),
		},
		semtype.Numeric: {
			describeSupported(cfg),
			describeNumeric(cfg),
		},
		semtype.DateTime: {
			describeSupported(cfg),
			describeDate(cfg),
		},
		semtype.Categorical: {
			describeSupported(cfg),
			describeCategorical(cfg),
		},
		semtype.Boolean: {},
		semtype.URL: {
			describeURL(cfg),
		},
		semtype.Path: {
			describePath(cfg),
		},
	}
	groupMap := map[semtype.Type][]GroupStep{
		semtype.BatchUnsupported: {
			describeCountsGroup(cfg),
			describeGenericGroup(cfg),
		},
		semtype.BatchNumeric: {
			describeSupportedGroup(cfg),
			describeNumericGroup(cfg),
		},
		semtype.BatchCategorical: {
			describeSupportedGroup(cfg),
			describeCategoricalGroup(cfg),
		},
		semtype.BatchBoolean: {
			describeSupportedGroup(cfg),
			describeBooleanGroup(cfg),
		},
	}
	return NewSummarizer(typeset, columnMap, groupMap)
}
