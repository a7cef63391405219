// Package batchtable is the columnar-batch backend: columns are held in
// fixed-size chunks and profiled through the batch engine, which summarizes
// whole same-kind column groups per call instead of one column at a time.
package batchtable

import (
	"fmt"
	"sort"
	"strings"

	"goprofile/adapters/memtable"
	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/ports"
)

// DefaultChunkSize bounds how many cells one chunk holds.
const DefaultChunkSize = 4096

// Column is one named chunked column.
type Column struct {
	name   string
	kind   semtype.Kind
	chunks [][]any
	length int
}

// NewColumn splits values into chunks of the given size.
func NewColumn(name string, kind semtype.Kind, values []any, chunkSize int) *Column {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	col := &Column{name: name, kind: kind, length: len(values)}
	for start := 0; start < len(values); start += chunkSize {
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}
		col.chunks = append(col.chunks, values[start:end])
	}
	return col
}

func (c *Column) Name() string       { return c.name }
func (c *Column) Kind() semtype.Kind { return c.kind }
func (c *Column) Len() int           { return c.length }

// Values concatenates the chunks.
func (c *Column) Values() []any {
	out := make([]any, 0, c.length)
	for _, chunk := range c.chunks {
		out = append(out, chunk...)
	}
	return out
}

// NumChunks reports how many chunks back the column.
func (c *Column) NumChunks() int { return len(c.chunks) }

func (c *Column) MemoryUsage(deep bool) int64 {
	const cellOverhead = 16
	size := int64(c.length) * cellOverhead
	if deep {
		for _, chunk := range c.chunks {
			for _, v := range chunk {
				if s, ok := v.(string); ok {
					size += int64(len(s))
				}
			}
		}
	}
	return size
}

func (c *Column) at(row int) any {
	for _, chunk := range c.chunks {
		if row < len(chunk) {
			return chunk[row]
		}
		row -= len(chunk)
	}
	return nil
}

// Table is the chunked ports.Dataset backend.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New builds a table, validating unique names and equal lengths.
func New(columns ...*Column) (*Table, error) {
	t := &Table{cols: make(map[string]*Column, len(columns))}
	for _, col := range columns {
		if _, exists := t.cols[col.name]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.name)
		}
		if len(t.names) > 0 && col.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d",
				core.ErrLengthMismatch, col.name, col.Len(), t.rows)
		}
		t.rows = col.Len()
		t.names = append(t.names, col.name)
		t.cols[col.name] = col
	}
	return t, nil
}

// FromTable rechunks an in-memory table into a batch table. Object-kind
// columns are inferred and cast first, because batch partitioning goes by
// declared storage kind only.
func FromTable(src *memtable.Table, chunkSize int) (*Table, error) {
	ts := semtype.Default()
	columns := make([]*Column, 0, len(src.ColumnNames()))
	for _, name := range src.ColumnNames() {
		col, _ := src.Column(name)
		kind := col.Kind()
		values := col.Values()
		if kind == semtype.KindObject {
			cast, inferred := ts.CastToInferred(values)
			switch inferred {
			case semtype.Numeric:
				kind, values = semtype.KindNumeric, cast
			case semtype.Boolean:
				kind, values = semtype.KindBool, cast
			case semtype.DateTime:
				kind, values = semtype.KindTime, cast
			case semtype.Categorical, semtype.URL, semtype.Path:
				kind, values = semtype.KindString, cast
			}
		}
		columns = append(columns, NewColumn(name, kind, values, chunkSize))
	}
	return New(columns...)
}

func (t *Table) Engine() string { return ports.EngineBatch }

func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Column(name string) (ports.Column, bool) {
	col, ok := t.cols[name]
	return col, ok
}

func (t *Table) NumRows() int { return t.rows }

func (t *Table) MemoryUsage(deep bool) int64 {
	var total int64
	for _, name := range t.names {
		total += t.cols[name].MemoryUsage(deep)
	}
	return total
}

func (t *Table) DuplicateRowCount(subset []string) (int, error) {
	groups, err := t.groupRows(subset)
	if err != nil {
		return 0, err
	}
	duplicates := 0
	for _, g := range groups {
		if g.count > 1 {
			duplicates += g.count - 1
		}
	}
	return duplicates, nil
}

func (t *Table) DuplicateRows(subset []string, limit int) ([]profile.DuplicateRow, error) {
	groups, err := t.groupRows(subset)
	if err != nil {
		return nil, err
	}
	duplicated := groups[:0]
	for _, g := range groups {
		if g.count > 1 {
			duplicated = append(duplicated, g)
		}
	}
	sort.Slice(duplicated, func(i, j int) bool {
		if duplicated[i].count != duplicated[j].count {
			return duplicated[i].count > duplicated[j].count
		}
		return duplicated[i].key < duplicated[j].key
	})
	if limit > 0 && len(duplicated) > limit {
		duplicated = duplicated[:limit]
	}

	rows := make([]profile.DuplicateRow, 0, len(duplicated))
	for _, g := range duplicated {
		row := make(map[string]any, len(subset))
		for _, name := range subset {
			row[name] = t.cols[name].at(g.firstRow)
		}
		rows = append(rows, profile.DuplicateRow{Count: g.count, Row: row})
	}
	return rows, nil
}

func (t *Table) Head(n int) [][]any {
	if n > t.rows {
		n = t.rows
	}
	return t.slice(0, n)
}

func (t *Table) Tail(n int) [][]any {
	start := t.rows - n
	if start < 0 {
		start = 0
	}
	return t.slice(start, t.rows)
}

func (t *Table) slice(start, end int) [][]any {
	rows := make([][]any, 0, end-start)
	for i := start; i < end; i++ {
		row := make([]any, len(t.names))
		for j, name := range t.names {
			row[j] = t.cols[name].at(i)
		}
		rows = append(rows, row)
	}
	return rows
}

type rowGroup struct {
	key      string
	count    int
	firstRow int
}

func (t *Table) groupRows(subset []string) ([]rowGroup, error) {
	cols := make([]*Column, len(subset))
	for i, name := range subset {
		col, ok := t.cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
		}
		cols[i] = col
	}

	byKey := make(map[string]int)
	var groups []rowGroup
	var sb strings.Builder
	for row := 0; row < t.rows; row++ {
		sb.Reset()
		for _, col := range cols {
			v := col.at(row)
			if semtype.IsMissing(v) {
				sb.WriteString("\x00NA")
			} else {
				fmt.Fprintf(&sb, "%v", v)
			}
			sb.WriteByte('\x1f')
		}
		key := sb.String()
		if idx, ok := byKey[key]; ok {
			groups[idx].count++
		} else {
			byKey[key] = len(groups)
			groups = append(groups, rowGroup{key: key, count: 1, firstRow: row})
		}
	}
	return groups, nil
}
