package medallion

import (
	"sort"

	"github.com/pkg/errors"
)

// AggSpec requests one or more aggregation functions over a single measure
// column. Specs are ordered so that the output schema is deterministic.
type AggSpec struct {
	Column string
	Funcs  []string
}

// Supported aggregation function names.
const (
	AggSum   = "sum"
	AggCount = "count"
	AggMean  = "mean"
	AggMin   = "min"
	AggMax   = "max"
)

type group struct {
	keyVals []Value
	rows    [][]Value
}

// GroupBy groups rows by the key columns and applies each requested
// aggregation to its measure column within each group. Rows with a null
// key cell are dropped. Output rows are sorted by the key columns. The
// aggregated column keeps its original name when exactly one aggregation
// is requested overall; otherwise each output column is named
// "<column>_<func>".
func (t *Table) GroupBy(keys []string, specs []AggSpec) (*Table, error) {
	if len(keys) == 0 {
		return nil, errors.New("group-by needs at least one key column")
	}
	keyIdxs := make([]int, len(keys))
	for i, name := range keys {
		idx, ok := t.colIndex(name)
		if !ok {
			return nil, errors.Errorf("no group-by column %q in table", name)
		}
		keyIdxs[i] = idx
	}
	specIdxs := make([]int, len(specs))
	total := 0
	for i, spec := range specs {
		idx, ok := t.colIndex(spec.Column)
		if !ok {
			return nil, errors.Errorf("no aggregation column %q in table", spec.Column)
		}
		specIdxs[i] = idx
		total += len(spec.Funcs)
	}

	groups := make(map[string]*group)
	order := make([]string, 0)
rowLoop:
	for _, row := range t.rows {
		for _, idx := range keyIdxs {
			if row[idx].IsNull() {
				continue rowLoop
			}
		}
		k := rowKeyAt(row, keyIdxs)
		g, ok := groups[k]
		if !ok {
			keyVals := make([]Value, len(keyIdxs))
			for i, idx := range keyIdxs {
				keyVals[i] = row[idx]
			}
			g = &group{keyVals: keyVals}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, row)
	}
	sort.Slice(order, func(a, b int) bool {
		ga, gb := groups[order[a]], groups[order[b]]
		for i := range ga.keyVals {
			if ga.keyVals[i].Less(gb.keyVals[i]) {
				return true
			}
			if gb.keyVals[i].Less(ga.keyVals[i]) {
				return false
			}
		}
		return false
	})

	cols := make([]string, 0, len(keys)+total)
	cols = append(cols, keys...)
	for _, spec := range specs {
		for _, fn := range spec.Funcs {
			name := spec.Column
			if total > 1 {
				name = spec.Column + "_" + fn
			}
			cols = append(cols, name)
		}
	}

	rows := make([][]Value, 0, len(order))
	for _, k := range order {
		g := groups[k]
		row := make([]Value, 0, len(cols))
		row = append(row, g.keyVals...)
		for i, spec := range specs {
			vals := make([]Value, len(g.rows))
			for j, r := range g.rows {
				vals[j] = r[specIdxs[i]]
			}
			for _, fn := range spec.Funcs {
				v, err := aggregate(fn, spec.Column, vals)
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			}
		}
		rows = append(rows, row)
	}
	return New(cols, rows)
}

// aggregate applies one aggregation function to a column's cells within a
// group. Null cells are skipped.
func aggregate(fn, column string, vals []Value) (Value, error) {
	switch fn {
	case AggCount:
		n := int64(0)
		for _, v := range vals {
			if !v.IsNull() {
				n++
			}
		}
		return IntValue(n), nil
	case AggSum:
		return sumValues(column, vals)
	case AggMean:
		sum, n := 0.0, 0
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			f, ok := v.Float64()
			if !ok {
				return NullValue(), errors.Errorf("mean of non-numeric cell %q in column %q", v, column)
			}
			sum += f
			n++
		}
		if n == 0 {
			return NullValue(), nil
		}
		return FloatValue(sum / float64(n)), nil
	case AggMin, AggMax:
		var best Value
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			if best.IsNull() || (fn == AggMin && v.Less(best)) || (fn == AggMax && best.Less(v)) {
				best = v
			}
		}
		return best, nil
	}
	return NullValue(), errors.Errorf("unsupported aggregation %q", fn)
}

// sumValues adds numeric cells, staying integral when every cell is an
// integer. An all-null or empty column sums to integer zero.
func sumValues(column string, vals []Value) (Value, error) {
	allInt := true
	var isum int64
	var fsum float64
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		f, ok := v.Float64()
		if !ok {
			return NullValue(), errors.Errorf("sum of non-numeric cell %q in column %q", v, column)
		}
		fsum += f
		if i, ok := v.Int64(); ok {
			isum += i
		} else {
			allInt = false
		}
	}
	if allInt {
		return IntValue(isum), nil
	}
	return FloatValue(fsum), nil
}
