// Package memtable is the in-memory tabular backend: column-oriented storage
// with []any cells, nil (or NaN) marking missing values.
package memtable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/ports"
)

// Column is one named in-memory column.
type Column struct {
	name   string
	kind   semtype.Kind
	values []any
}

// NewColumn creates a column with an explicit storage kind.
func NewColumn(name string, kind semtype.Kind, values []any) *Column {
	return &Column{name: name, kind: kind, values: values}
}

// FloatColumn creates a numeric column; NaN cells count as missing.
func FloatColumn(name string, values []float64) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return NewColumn(name, semtype.KindNumeric, cells)
}

// StringColumn creates a string column; nil is expressed by passing the cells
// through AnyColumn instead.
func StringColumn(name string, values []string) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return NewColumn(name, semtype.KindString, cells)
}

// BoolColumn creates a boolean column.
func BoolColumn(name string, values []bool) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return NewColumn(name, semtype.KindBool, cells)
}

// TimeColumn creates a datetime column.
func TimeColumn(name string, values []time.Time) *Column {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return NewColumn(name, semtype.KindTime, cells)
}

// AnyColumn creates a column of mixed or composite values.
func AnyColumn(name string, values []any) *Column {
	return NewColumn(name, semtype.KindObject, values)
}

func (c *Column) Name() string        { return c.name }
func (c *Column) Kind() semtype.Kind  { return c.kind }
func (c *Column) Values() []any       { return c.values }
func (c *Column) Len() int            { return len(c.values) }

// MemoryUsage estimates the column footprint: one interface header per cell,
// plus string payloads when deep accounting is on.
func (c *Column) MemoryUsage(deep bool) int64 {
	const cellOverhead = 16
	size := int64(len(c.values)) * cellOverhead
	if deep {
		for _, v := range c.values {
			if s, ok := v.(string); ok {
				size += int64(len(s))
			}
		}
	}
	return size
}

// Table is the in-memory ports.Dataset backend.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New builds a table from columns, validating unique names and equal lengths.
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

// MustNew is New for fixtures where construction cannot fail.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Engine() string { return ports.EngineMemory }

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

// DuplicateRowCount counts rows beyond the first occurrence of each distinct
// row over the subset columns.
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

// DuplicateRows returns the most duplicated rows over the subset columns,
// largest count first, resolving count ties by key for determinism.
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
			row[name] = t.cols[name].values[g.firstRow]
		}
		rows = append(rows, profile.DuplicateRow{Count: g.count, Row: row})
	}
	return rows, nil
}

func (t *Table) Head(n int) [][]any { return t.slice(0, min(n, t.rows)) }

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
			row[j] = t.cols[name].values[i]
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
			v := col.values[row]
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

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
