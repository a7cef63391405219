package semtype

// Type is a semantic type tag for a column: the statistical category inferred
// from values, as opposed to the raw storage representation.
type Type string

const (
	// Unsupported is the root of the type hierarchy. Columns that match no
	// other type land here and receive only minimal statistics.
	Unsupported Type = "Unsupported"

	Numeric     Type = "Numeric"
	DateTime    Type = "DateTime"
	Categorical Type = "Categorical"
	Boolean     Type = "Boolean"
	URL         Type = "URL"
	Path        Type = "Path"

	// Batch variants form a parallel sub-hierarchy used by the columnar-batch
	// engine, where whole same-type column groups are summarized in one call.
	BatchUnsupported Type = "BatchUnsupported"
	BatchNumeric     Type = "BatchNumeric"
	BatchCategorical Type = "BatchCategorical"
	BatchBoolean     Type = "BatchBoolean"
)

// String returns the type tag.
func (t Type) String() string { return string(t) }

// IsBatch reports whether the type belongs to the batch sub-hierarchy.
func (t Type) IsBatch() bool {
	switch t {
	case BatchUnsupported, BatchNumeric, BatchCategorical, BatchBoolean:
		return true
	}
	return false
}

// IsSupported reports whether the type carries more than minimal statistics.
func (t Type) IsSupported() bool {
	return t != Unsupported && t != BatchUnsupported
}

// Kind is the storage representation a backend declares for a column.
// Detection (as opposed to inference) maps kinds straight to semantic types
// without inspecting values.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindTime    Kind = "time"
	KindObject  Kind = "object"
)

// Edge is a parent→child relation in the type hierarchy.
type Edge struct {
	Parent Type
	Child  Type
}
