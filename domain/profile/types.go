package profile

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"goprofile/domain/core"
	"goprofile/domain/semtype"
)

// ColumnDescription is the per-column statistics mapping produced by a
// summary chain. Keys are statistic names; after the chain completes it
// always carries at least "type", "n", "n_missing" and "p_missing".
// Descriptions are built by the dispatcher and never mutated afterwards.
type ColumnDescription map[string]any

// Type returns the semantic type tag, Unsupported when absent.
func (d ColumnDescription) Type() semtype.Type {
	if t, ok := d["type"].(semtype.Type); ok {
		return t
	}
	return semtype.Unsupported
}

// NMissing returns the missing-cell count, treating an absent field as zero.
func (d ColumnDescription) NMissing() int {
	return intField(d, "n_missing")
}

// N returns the observation count, treating an absent field as zero.
func (d ColumnDescription) N() int {
	return intField(d, "n")
}

func intField(d ColumnDescription, key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Variables is an order-preserving mapping from column name to description.
// Iteration order is the table's column order unless a sort was applied.
type Variables struct {
	names  []string
	byName map[string]ColumnDescription
}

// NewVariables creates an empty Variables mapping.
func NewVariables() *Variables {
	return &Variables{byName: make(map[string]ColumnDescription)}
}

// Set adds or replaces a column description, appending new names at the end.
func (v *Variables) Set(name string, desc ColumnDescription) {
	if _, exists := v.byName[name]; !exists {
		v.names = append(v.names, name)
	}
	v.byName[name] = desc
}

// Get returns the description for a column.
func (v *Variables) Get(name string) (ColumnDescription, bool) {
	d, ok := v.byName[name]
	return d, ok
}

// Names returns column names in iteration order.
func (v *Variables) Names() []string {
	return append([]string(nil), v.names...)
}

// Len returns the number of described columns.
func (v *Variables) Len() int { return len(v.names) }

// Reorder rebuilds the iteration order from the given names. Names absent
// from the mapping are ignored; described columns missing from the list keep
// their relative position at the end.
func (v *Variables) Reorder(names []string) {
	seen := make(map[string]bool, len(names))
	ordered := make([]string, 0, len(v.names))
	for _, name := range names {
		if _, ok := v.byName[name]; ok && !seen[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	for _, name := range v.names {
		if !seen[name] {
			ordered = append(ordered, name)
		}
	}
	v.names = ordered
}

// SortByName orders columns by case-insensitive name comparison.
func (v *Variables) SortByName(descending bool) {
	sort.SliceStable(v.names, func(i, j int) bool {
		less := strings.ToLower(v.names[i]) < strings.ToLower(v.names[j])
		if descending {
			return !less
		}
		return less
	})
}

// MarshalJSON emits an object whose key order matches iteration order.
func (v *Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range v.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the mapping; key order follows the document order.
func (v *Variables) UnmarshalJSON(data []byte) error {
	v.byName = make(map[string]ColumnDescription)
	v.names = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := keyTok.(string)
		var desc ColumnDescription
		if err := dec.Decode(&desc); err != nil {
			return err
		}
		v.Set(name, desc)
	}
	return nil
}

// TableStats is the aggregate table-level statistics mapping: row/column
// counts, memory footprint, missingness aggregates, the type histogram and
// duplicate counts. Read-only after construction.
type TableStats map[string]any

// N returns the row count.
func (s TableStats) N() int { return intField(ColumnDescription(s), "n") }

// TypeCounts returns the semantic type histogram.
func (s TableStats) TypeCounts() map[semtype.Type]int {
	if counts, ok := s["types"].(map[semtype.Type]int); ok {
		return counts
	}
	return nil
}

// Histogram is an equal-width binned frequency payload: len(BinEdges) is
// always len(Counts)+1.
type Histogram struct {
	Counts   []int     `json:"counts"`
	BinEdges []float64 `json:"bin_edges"`
}

// ChiSquared is the result of a uniformity test over binned frequencies.
type ChiSquared struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// CorrelationMatrix is a symmetric correlation result over a column subset.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// MissingDiagram is the data behind one missing-value visual: the renderer
// lives downstream, the core only produces the matrix/count payload.
type MissingDiagram struct {
	Name    string `json:"name"`
	Caption string `json:"caption"`
	Data    any    `json:"data"`
}

// Sample is a head or tail excerpt of the profiled table.
type Sample struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Caption string   `json:"caption,omitempty"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// DuplicateRow is one exactly-duplicated row with its occurrence count.
type DuplicateRow struct {
	Count int            `json:"count"`
	Row   map[string]any `json:"row"`
}

// Analysis carries report run metadata.
type Analysis struct {
	Title     string         `json:"title"`
	DateStart core.Timestamp `json:"date_start"`
	DateEnd   core.Timestamp `json:"date_end"`
}

// Package identifies the producing library and the configuration used.
type Package struct {
	Version string         `json:"goprofile_version"`
	Config  map[string]any `json:"goprofile_config"`
}

// Report is the top-level profiling result. Assembled once per run,
// immutable afterwards, serialized/rendered downstream.
type Report struct {
	ID           core.ReportID                 `json:"id"`
	Analysis     Analysis                      `json:"analysis"`
	Table        TableStats                    `json:"table"`
	Variables    *Variables                    `json:"variables"`
	Scatter      map[string]map[string][]Point `json:"scatter"`
	Correlations map[string]CorrelationMatrix  `json:"correlations"`
	Missing      map[string]MissingDiagram     `json:"missing"`
	Messages     []Message                     `json:"messages"`
	Package      Package                       `json:"package"`
	Sample       []Sample                      `json:"sample"`
	Duplicates   []DuplicateRow                `json:"duplicates"`
}

// Point is one pairwise observation in a scatter payload.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
