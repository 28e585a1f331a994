package interfaces

import (
	"strings"
)

// Cell holds one parsed field. Columns declared as multi-value carry an
// ordered list of strings, every other column a single string.
type Cell struct {
	scalar string
	multi  []string
	isList bool
}

// ScalarCell builds a single-value cell
func ScalarCell(s string) Cell {
	return Cell{scalar: s}
}

// MultiCell builds a multi-value cell. A nil slice is stored as an empty list.
func MultiCell(values []string) Cell {
	if values == nil {
		values = []string{}
	}
	return Cell{multi: values, isList: true}
}

// IsMulti reports whether the cell is a list
func (c Cell) IsMulti() bool {
	return c.isList
}

// Values returns the cell as a list; a scalar becomes a one-element list
func (c Cell) Values() []string {
	if c.isList {
		return c.multi
	}
	return []string{c.scalar}
}

// String returns the scalar value, or the list joined with ", "
func (c Cell) String() string {
	if c.isList {
		return strings.Join(c.multi, ", ")
	}
	return c.scalar
}

// First returns the scalar value or the first list element ("" for an empty list)
func (c Cell) First() string {
	if c.isList {
		if len(c.multi) == 0 {
			return ""
		}
		return c.multi[0]
	}
	return c.scalar
}

// IsEmpty is true for an empty scalar or a list with no non-empty element
func (c Cell) IsEmpty() bool {
	if !c.isList {
		return strings.TrimSpace(c.scalar) == ""
	}
	for _, v := range c.multi {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Record is one data row keyed by column name
type Record map[string]Cell

// Get returns the cell for a column and whether the record has it
func (r Record) Get(column string) (Cell, bool) {
	c, ok := r[column]
	return c, ok
}

// Text returns the string form of a column, "" when missing
func (r Record) Text(column string) string {
	if c, ok := r[column]; ok {
		return c.String()
	}
	return ""
}

// HeaderSet is the ordered set of known column names for a loaded table
type HeaderSet struct {
	columns []string
	index   map[string]int
}

// NewHeaderSet builds a header set; duplicate names keep their first position
func NewHeaderSet(columns []string) HeaderSet {
	hs := HeaderSet{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, exists := hs.index[c]; !exists {
			hs.index[c] = i
		}
	}
	return hs
}

// Has reports whether the column is part of the loaded data
func (h HeaderSet) Has(column string) bool {
	if column == "" {
		return false
	}
	_, ok := h.index[column]
	return ok
}

// Columns returns the header names in source order
func (h HeaderSet) Columns() []string {
	return h.columns
}

// Len returns the number of columns
func (h HeaderSet) Len() int {
	return len(h.columns)
}

// Filter keeps only the columns present in the header set, preserving the given order
func (h HeaderSet) Filter(columns []string) []string {
	valid := make([]string, 0, len(columns))
	for _, c := range columns {
		if h.Has(c) {
			valid = append(valid, c)
		}
	}
	return valid
}

// Table is the parsed source: headers, records and any row-shape warnings
type Table struct {
	Headers  []string
	Records  []Record
	Warnings []string
}

// HeaderSet returns the header set of the table
func (t *Table) HeaderSet() HeaderSet {
	if t == nil {
		return NewHeaderSet(nil)
	}
	return NewHeaderSet(t.Headers)
}

// Clone copies the record slice so that an in-place sort leaves the table untouched.
// Records themselves are shared.
func (t *Table) Clone() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.Records))
	copy(out, t.Records)
	return out
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
