package feed

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/pkg/dag"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
)

// ColumnFilter maps a column name to the values a row may hold in it. All
// columns must match; columns the table does not have are ignored.
type ColumnFilter map[string][]string

// TableFilter scopes a ColumnFilter to one table.
type TableFilter struct {
	Table  string
	Filter ColumnFilter
}

// View is an ordered list of table filters. Each entry becomes one layer of
// the loaded feed, applied on top of the previous layers.
type View []TableFilter

// Tables returns the filtered table names in order.
func (v View) Tables() []string {
	names := make([]string, len(v))
	for i, tf := range v {
		names[i] = tf.Table
	}
	return names
}

// FilteredView is one layer of a loaded feed. It reads tables from the layer
// below, applies its own column filters, prunes rows through the graph's
// filter-propagating out-edges and finally runs node converters.
//
// Results are memoized per table, so asking for a table twice, directly or
// through a cascade, reads and filters it once. FilteredView is not safe for
// concurrent use.
type FilteredView struct {
	source  TableSource
	graph   *dag.DAG
	filters map[string]ColumnFilter
	cache   map[string]*Table
	logger  *log.Logger
}

// NewFilteredView layers a view over source. graph drives pruning and
// conversion; filters may be nil. A nil logger uses log.Default().
func NewFilteredView(source TableSource, graph *dag.DAG, filters map[string]ColumnFilter, logger *log.Logger) *FilteredView {
	if logger == nil {
		logger = log.Default()
	}
	return &FilteredView{
		source:  source,
		graph:   graph,
		filters: maps.Clone(filters),
		cache:   make(map[string]*Table),
		logger:  logger,
	}
}

// Graph returns the graph that drives this layer.
func (v *FilteredView) Graph() *dag.DAG { return v.graph }

// Table returns the rows of name visible at this layer.
func (v *FilteredView) Table(name string) (*Table, error) {
	if t, ok := v.cache[name]; ok {
		return t, nil
	}

	t, err := v.source.Table(name)
	if err != nil {
		return nil, err
	}
	t = applyFilter(t, v.filters[name])

	t, err = v.prune(name, t)
	if err != nil {
		return nil, err
	}

	t, err = v.convert(name, t)
	if err != nil {
		return nil, err
	}

	v.cache[name] = t
	return t, nil
}

func (v *FilteredView) prune(name string, t *Table) (*Table, error) {
	for _, e := range v.graph.OutEdges(name) {
		if !e.PropagatesFilter() {
			continue
		}
		dep, err := v.Table(e.To)
		if err != nil {
			return nil, err
		}
		for _, p := range e.Dependencies {
			if t.HasColumn(p.From) && dep.HasColumn(p.To) {
				t = t.IsIn(p.From, dep.ValueSet(p.To))
			}
		}
	}
	return t, nil
}

func (v *FilteredView) convert(name string, t *Table) (*Table, error) {
	node, ok := v.graph.Node(name)
	if !ok || len(node.Converters) == 0 || t.Empty() {
		return t, nil
	}

	cols := make([]string, 0, len(node.Converters))
	for _, col := range slices.Sorted(maps.Keys(node.Converters)) {
		if t.HasColumn(col) {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return t, nil
	}

	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out := maps.Clone(r)
		for _, col := range cols {
			raw, ok := out[col].(string)
			if !ok {
				continue
			}
			val, err := node.Converters[col](raw)
			if err != nil {
				return nil, fterrors.Wrap(fterrors.ErrCodeParse, err, "%s: column %s value %q", name, col, raw)
			}
			out[col] = val
		}
		rows[i] = out
	}
	v.logger.Debug("converted table", "table", name, "columns", cols)
	return &Table{columns: t.columns, rows: rows}, nil
}

func applyFilter(t *Table, f ColumnFilter) *Table {
	for _, col := range slices.Sorted(maps.Keys(f)) {
		set := make(map[string]struct{}, len(f[col]))
		for _, val := range f[col] {
			set[val] = struct{}{}
		}
		t = t.IsIn(col, set)
	}
	return t
}
