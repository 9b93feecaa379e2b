package feed

import (
	"fmt"
	"slices"
)

// Row maps column names to values. Values are strings as read from disk and
// may be replaced by richer types (time.Time, int, float64) by converters.
type Row map[string]any

// Table is an ordered set of columns and rows. Tables are never modified
// after construction; every operation returns a new Table that may share
// Row maps with its receiver.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable builds a table from a column list and rows.
func NewTable(columns []string, rows []Row) *Table {
	return &Table{columns: slices.Clone(columns), rows: rows}
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Rows returns the rows. The slice and its maps must not be modified.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(col string) bool { return slices.Contains(t.columns, col) }

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	rows := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return &Table{columns: t.columns, rows: rows}
}

// IsIn returns the rows whose value in col is a member of set. If the table
// has no such column, the receiver is returned unchanged.
func (t *Table) IsIn(col string, set map[string]struct{}) *Table {
	if !t.HasColumn(col) {
		return t
	}
	return t.Filter(func(r Row) bool {
		_, ok := set[ValueString(r[col])]
		return ok
	})
}

// ValueSet returns the distinct values of col keyed by their string form.
func (t *Table) ValueSet(col string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range t.rows {
		if v, ok := r[col]; ok {
			set[ValueString(v)] = struct{}{}
		}
	}
	return set
}

// Values returns the distinct values of col in first-seen order.
func (t *Table) Values(col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		v, ok := r[col]
		if !ok {
			continue
		}
		s := ValueString(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// GroupBy partitions the rows by the string form of their value in col.
// Rows without the column are grouped under the empty key.
func (t *Table) GroupBy(col string) map[string]*Table {
	groups := make(map[string]*Table)
	for _, r := range t.rows {
		key := ValueString(r[col])
		g, ok := groups[key]
		if !ok {
			g = &Table{columns: t.columns}
			groups[key] = g
		}
		g.rows = append(g.rows, r)
	}
	return groups
}

// ValueString renders a cell value as the string used for membership tests.
func ValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
