package ports

import (
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
)

// Engine names select the backend execution model for summarization.
const (
	// EngineMemory summarizes one in-memory column at a time.
	EngineMemory = "memory"
	// EngineBatch summarizes whole same-type column groups in one call.
	EngineBatch = "batch"
)

// Column is one named column of a tabular dataset.
type Column interface {
	Name() string
	// Kind is the declared storage representation, used by detection and by
	// the batch engine's type partitioning.
	Kind() semtype.Kind
	// Values returns cell values in row order; missing cells are nil.
	Values() []any
	Len() int
	// MemoryUsage estimates the column footprint in bytes. With deep
	// accounting the estimate follows object references (string payloads).
	MemoryUsage(deep bool) int64
}

// Dataset is the tabular abstraction the dispatcher and aggregator are
// polymorphic over. Concrete backends: an in-memory table and a
// columnar-batch table.
type Dataset interface {
	// Engine returns the backend execution model (EngineMemory, EngineBatch).
	Engine() string
	// ColumnNames returns names in table order; names are unique.
	ColumnNames() []string
	Column(name string) (Column, bool)
	NumRows() int
	MemoryUsage(deep bool) int64
	// DuplicateRowCount counts exactly-duplicated rows over the given column
	// subset (rows beyond the first occurrence).
	DuplicateRowCount(subset []string) (int, error)
	// DuplicateRows returns the most frequent duplicated rows over the given
	// column subset, largest count first.
	DuplicateRows(subset []string, limit int) ([]profile.DuplicateRow, error)
	// Head and Tail return row excerpts for report samples.
	Head(n int) [][]any
	Tail(n int) [][]any
}
