package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the value type stored in a column.
type Kind int

const (
	String Kind = iota
	Float
	Bool
)

// Column holds the values for one named column. Exactly one of the value
// slices is populated, selected by Kind. Missing numeric values are NaN;
// string columns use "" for missing.
type Column struct {
	Kind    Kind
	Strings []string
	Floats  []float64
	Bools   []bool
}

func (c *Column) len() int {
	switch c.Kind {
	case Float:
		return len(c.Floats)
	case Bool:
		return len(c.Bools)
	default:
		return len(c.Strings)
	}
}

// Table is an ordered set of equal-length named columns. Tables returned by
// the pipeline are treated as immutable by callers; derived tables are always
// freshly built rather than mutated in place.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New returns an empty table with a fixed row count. Columns added later must
// match that length.
func New(rows int) *Table {
	return &Table{cols: make(map[string]*Column), rows: rows}
}

// FromRows builds a string-typed table from a header and data rows. Short rows
// are padded with empty cells.
func FromRows(header []string, rows [][]string) *Table {
	t := New(len(rows))
	for j, name := range header {
		vals := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				vals[i] = row[j]
			}
		}
		t.SetStrings(name, vals)
	}
	return t
}

// Len reports the number of data rows.
func (t *Table) Len() int { return t.rows }

// Names returns column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Kind returns the column kind, or String if the column is absent.
func (t *Table) Kind(name string) Kind {
	if c, ok := t.cols[name]; ok {
		return c.Kind
	}
	return String
}

func (t *Table) set(name string, c *Column) {
	if c.len() != t.rows {
		panic(fmt.Sprintf("table: column %q has %d values, table has %d rows", name, c.len(), t.rows))
	}
	if _, ok := t.cols[name]; !ok {
		t.names = append(t.names, name)
	}
	t.cols[name] = c
}

// SetStrings installs (or replaces) a string column.
func (t *Table) SetStrings(name string, vals []string) {
	t.set(name, &Column{Kind: String, Strings: vals})
}

// SetFloats installs (or replaces) a numeric column. NaN marks missing.
func (t *Table) SetFloats(name string, vals []float64) {
	t.set(name, &Column{Kind: Float, Floats: vals})
}

// SetBools installs (or replaces) a boolean column.
func (t *Table) SetBools(name string, vals []bool) {
	t.set(name, &Column{Kind: Bool, Bools: vals})
}

// SetColumn installs a copy of an existing column under a new name.
func (t *Table) SetColumn(name string, c *Column) {
	cp := &Column{Kind: c.Kind}
	switch c.Kind {
	case Float:
		cp.Floats = append([]float64(nil), c.Floats...)
	case Bool:
		cp.Bools = append([]bool(nil), c.Bools...)
	default:
		cp.Strings = append([]string(nil), c.Strings...)
	}
	t.set(name, cp)
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	return t.cols[name]
}

// Strings returns the values of a string column.
func (t *Table) Strings(name string) ([]string, bool) {
	c, ok := t.cols[name]
	if !ok || c.Kind != String {
		return nil, false
	}
	return c.Strings, true
}

// Floats returns the values of a numeric column.
func (t *Table) Floats(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	if !ok || c.Kind != Float {
		return nil, false
	}
	return c.Floats, true
}

// Bools returns the values of a boolean column.
func (t *Table) Bools(name string) ([]bool, bool) {
	c, ok := t.cols[name]
	if !ok || c.Kind != Bool {
		return nil, false
	}
	return c.Bools, true
}

// CellString renders the cell at row i of the named column as text, regardless
// of the column kind. Missing values render as "".
func (t *Table) CellString(name string, i int) string {
	c, ok := t.cols[name]
	if !ok {
		return ""
	}
	switch c.Kind {
	case Float:
		v := c.Floats[i]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(c.Bools[i])
	default:
		return c.Strings[i]
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.rows)
	for _, name := range t.names {
		out.SetColumn(name, t.cols[name])
	}
	return out
}

// SelectRows returns a new table containing only the given row indexes, in the
// given order.
func (t *Table) SelectRows(idx []int) *Table {
	out := New(len(idx))
	for _, name := range t.names {
		c := t.cols[name]
		nc := &Column{Kind: c.Kind}
		switch c.Kind {
		case Float:
			nc.Floats = make([]float64, len(idx))
			for k, i := range idx {
				nc.Floats[k] = c.Floats[i]
			}
		case Bool:
			nc.Bools = make([]bool, len(idx))
			for k, i := range idx {
				nc.Bools[k] = c.Bools[i]
			}
		default:
			nc.Strings = make([]string, len(idx))
			for k, i := range idx {
				nc.Strings[k] = c.Strings[i]
			}
		}
		out.set(name, nc)
	}
	return out
}

// CSVBytes serializes the table as comma-separated UTF-8 text with a header
// row. Missing numeric values serialize as empty cells.
func (t *Table) CSVBytes() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.names); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.names))
	for i := 0; i < t.rows; i++ {
		for j, name := range t.names {
			rec[j] = t.CellString(name, i)
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
