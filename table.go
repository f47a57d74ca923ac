package medallion

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// Metadata columns are reserved, underscore-prefixed column names. Each
// layer owns the columns it adds and the following layer strips them
// before running its own logic.
const (
	ColIngestionTimestamp = "_ingestion_timestamp"
	ColSourceSystem       = "_source_system"
	ColSilverTimestamp    = "_silver_timestamp"
	ColGoldTimestamp      = "_gold_timestamp"
)

// Table is an in-memory relation: an ordered set of named columns and the
// rows holding their cells. Tables are treated as immutable - every
// operation returns a new Table and never modifies its receiver.
type Table struct {
	cols []string
	rows [][]Value
}

// New creates a Table from a header and rows. The header must be free of
// empty and duplicate names, and every row must match its width.
func New(columns []string, rows [][]Value) (*Table, error) {
	if err := validateHeader(columns); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Errorf("row %d has %d cells, header has %d columns", i, len(row), len(columns))
		}
	}
	t := &Table{
		cols: make([]string, len(columns)),
		rows: make([][]Value, len(rows)),
	}
	copy(t.cols, columns)
	for i, row := range rows {
		t.rows[i] = make([]Value, len(row))
		copy(t.rows[i], row)
	}
	return t, nil
}

func validateHeader(header []string) error {
	fields := make(map[string]int)
	for i, h := range header {
		if h == "" {
			return errors.Errorf("header contains empty string at %d: %v", i, header)
		}
		if pos, exists := fields[h]; exists {
			return errors.Errorf("%s appeared at both %d and %d in header", h, pos, i)
		}
		fields[h] = i
	}
	return nil
}

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex(name)
	return ok
}

func (t *Table) colIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Value, error) {
	idx, ok := t.colIndex(name)
	if !ok {
		return nil, errors.Errorf("no column %q in table", name)
	}
	vals := make([]Value, len(t.rows))
	for i, row := range t.rows {
		vals[i] = row[idx]
	}
	return vals, nil
}

// Cell returns the cell at the given row in the named column.
func (t *Table) Cell(row int, name string) (Value, error) {
	idx, ok := t.colIndex(name)
	if !ok {
		return NullValue(), errors.Errorf("no column %q in table", name)
	}
	if row < 0 || row >= len(t.rows) {
		return NullValue(), errors.Errorf("row %d out of range (%d rows)", row, len(t.rows))
	}
	return t.rows[row][idx], nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c, _ := New(t.cols, t.rows)
	return c
}

// Select projects the table onto the given columns, in the given order.
func (t *Table) Select(columns []string) (*Table, error) {
	idxs := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := t.colIndex(name)
		if !ok {
			return nil, errors.Errorf("no column %q in table", name)
		}
		idxs[i] = idx
	}
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		rows[i] = make([]Value, len(idxs))
		for j, idx := range idxs {
			rows[i][j] = row[idx]
		}
	}
	return New(columns, rows)
}

// DropColumns removes the named columns. Names not present are ignored, so
// it is safe to strip another layer's metadata without checking for it.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.cols) {
		return t.Clone()
	}
	out, _ := t.Select(keep)
	return out
}

// WithColumnNames returns a copy of t with its columns renamed. names must
// have one entry per existing column.
func (t *Table) WithColumnNames(names []string) (*Table, error) {
	if len(names) != len(t.cols) {
		return nil, errors.Errorf("got %d names for %d columns", len(names), len(t.cols))
	}
	return New(names, t.rows)
}

// AppendColumn returns a copy of t with a new column appended. vals must
// have one cell per row.
func (t *Table) AppendColumn(name string, vals []Value) (*Table, error) {
	if len(vals) != len(t.rows) {
		return nil, errors.Errorf("column %q has %d cells for %d rows", name, len(vals), len(t.rows))
	}
	cols := append(t.Columns(), name)
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append(append(make([]Value, 0, len(row)+1), row...), vals[i])
	}
	return New(cols, rows)
}

// ReplaceColumn returns a copy of t with the named column's cells swapped
// for vals, preserving column order. vals must have one cell per row.
func (t *Table) ReplaceColumn(name string, vals []Value) (*Table, error) {
	idx, ok := t.colIndex(name)
	if !ok {
		return nil, errors.Errorf("no column %q in table", name)
	}
	if len(vals) != len(t.rows) {
		return nil, errors.Errorf("column %q has %d cells for %d rows", name, len(vals), len(t.rows))
	}
	out := t.Clone()
	for i := range out.rows {
		out.rows[i][idx] = vals[i]
	}
	return out, nil
}

// AppendConstant returns a copy of t with a new column holding the same
// cell in every row.
func (t *Table) AppendConstant(name string, v Value) (*Table, error) {
	vals := make([]Value, len(t.rows))
	for i := range vals {
		vals[i] = v
	}
	return t.AppendColumn(name, vals)
}

// SetConstant returns a copy of t where the named column holds v in every
// row, overwriting the column if it exists and appending it otherwise.
func (t *Table) SetConstant(name string, v Value) (*Table, error) {
	if !t.HasColumn(name) {
		return t.AppendConstant(name, v)
	}
	vals := make([]Value, len(t.rows))
	for i := range vals {
		vals[i] = v
	}
	return t.ReplaceColumn(name, vals)
}

// DropDuplicates removes rows that are identical across all columns,
// keeping the first occurrence. Row order is otherwise preserved.
func (t *Table) DropDuplicates() *Table {
	seen := make(map[string]struct{}, len(t.rows))
	rows := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		k := rowKey(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, row)
	}
	out, _ := New(t.cols, rows)
	return out
}

// DropNulls removes rows holding a null in any of the subset columns, or
// in any column at all if no subset is given.
func (t *Table) DropNulls(subset ...string) (*Table, error) {
	idxs := make([]int, 0, len(t.cols))
	if len(subset) == 0 {
		for i := range t.cols {
			idxs = append(idxs, i)
		}
	} else {
		for _, name := range subset {
			idx, ok := t.colIndex(name)
			if !ok {
				return nil, errors.Errorf("no column %q in table", name)
			}
			idxs = append(idxs, idx)
		}
	}
	rows := make([][]Value, 0, len(t.rows))
rowLoop:
	for _, row := range t.rows {
		for _, idx := range idxs {
			if row[idx].IsNull() {
				continue rowLoop
			}
		}
		rows = append(rows, row)
	}
	return New(t.cols, rows)
}

// SortBy returns a copy of t stably sorted by the given columns, ascending.
func (t *Table) SortBy(columns ...string) (*Table, error) {
	idxs := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := t.colIndex(name)
		if !ok {
			return nil, errors.Errorf("no column %q in table", name)
		}
		idxs[i] = idx
	}
	out := t.Clone()
	sort.SliceStable(out.rows, func(a, b int) bool {
		for _, idx := range idxs {
			va, vb := out.rows[a][idx], out.rows[b][idx]
			if va.Less(vb) {
				return true
			}
			if vb.Less(va) {
				return false
			}
		}
		return false
	})
	return out, nil
}

// Equal reports whether two tables have the same columns in the same order
// and the same rows in the same order.
func (t *Table) Equal(o *Table) bool {
	if len(t.cols) != len(o.cols) || len(t.rows) != len(o.rows) {
		return false
	}
	for i, c := range t.cols {
		if o.cols[i] != c {
			return false
		}
	}
	for i, row := range t.rows {
		for j, v := range row {
			if !v.Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func rowKey(row []Value) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = v.key()
	}
	return strings.Join(parts, "\x1f")
}

func rowKeyAt(row []Value, idxs []int) string {
	parts := make([]string, len(idxs))
	for i, idx := range idxs {
		parts[i] = row[idx].key()
	}
	return strings.Join(parts, "\x1f")
}

// Fprint writes a plain-text rendering of the table to w, one aligned row
// per line with a header on top.
func Fprint(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.cols, "\t")); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, row := range t.rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = v.String()
		}
		if _, err := fmt.Fprintln(tw, strings.Join(parts, "\t")); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	return errors.Wrap(tw.Flush(), "flushing")
}
