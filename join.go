package medallion

import (
	"github.com/pkg/errors"
)

// JoinKind selects how unmatched rows are handled by Join.
type JoinKind string

// Supported join kinds.
const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinOuter JoinKind = "outer"
)

// Join performs a relational join of two tables on the given key columns.
// Null key cells never match. Key columns appear once in the output, at
// their positions in the left table; overlapping non-key column names are
// disambiguated with "_x" (left) and "_y" (right) suffixes. Inner and left
// joins preserve left row order, right joins preserve right row order, and
// outer joins emit left rows first followed by unmatched right rows.
func Join(left, right *Table, on []string, how JoinKind) (*Table, error) {
	switch how {
	case JoinInner, JoinLeft, JoinRight, JoinOuter:
	default:
		return nil, errors.Errorf("unsupported join kind %q", how)
	}
	if len(on) == 0 {
		return nil, errors.New("join needs at least one key column")
	}
	leftKey := make([]int, len(on))
	rightKey := make([]int, len(on))
	keySet := make(map[string]struct{}, len(on))
	for i, name := range on {
		li, ok := left.colIndex(name)
		if !ok {
			return nil, errors.Errorf("no join column %q in left table", name)
		}
		ri, ok := right.colIndex(name)
		if !ok {
			return nil, errors.Errorf("no join column %q in right table", name)
		}
		leftKey[i], rightKey[i] = li, ri
		keySet[name] = struct{}{}
	}

	// Right columns carried into the output, in right table order.
	rightCarry := make([]int, 0, right.NumCols())
	for i, name := range right.cols {
		if _, ok := keySet[name]; !ok {
			rightCarry = append(rightCarry, i)
		}
	}

	overlap := make(map[string]struct{})
	for _, name := range left.cols {
		if _, key := keySet[name]; key {
			continue
		}
		for _, ri := range rightCarry {
			if right.cols[ri] == name {
				overlap[name] = struct{}{}
			}
		}
	}
	cols := make([]string, 0, left.NumCols()+len(rightCarry))
	for _, name := range left.cols {
		if _, ok := overlap[name]; ok {
			name += "_x"
		}
		cols = append(cols, name)
	}
	for _, ri := range rightCarry {
		name := right.cols[ri]
		if _, ok := overlap[name]; ok {
			name += "_y"
		}
		cols = append(cols, name)
	}

	index := make(map[string][]int, right.NumRows())
	for i, row := range right.rows {
		if k, ok := matchKey(row, rightKey); ok {
			index[k] = append(index[k], i)
		}
	}

	var rows [][]Value
	matched := make(map[int]struct{})
	emitLeft := func(lrow []Value, rrow []Value) {
		out := make([]Value, 0, len(cols))
		out = append(out, lrow...)
		for _, ri := range rightCarry {
			if rrow == nil {
				out = append(out, NullValue())
			} else {
				out = append(out, rrow[ri])
			}
		}
		rows = append(rows, out)
	}

	if how == JoinRight {
		// Mirror of the left join, preserving right row order. Key cells
		// come from the right row; other left columns go null when
		// unmatched.
		leftIndex := make(map[string][]int, left.NumRows())
		for i, row := range left.rows {
			if k, ok := matchKey(row, leftKey); ok {
				leftIndex[k] = append(leftIndex[k], i)
			}
		}
		for _, rrow := range right.rows {
			k, ok := matchKey(rrow, rightKey)
			var lmatches []int
			if ok {
				lmatches = leftIndex[k]
			}
			if len(lmatches) == 0 {
				lrow := make([]Value, left.NumCols())
				for i, ki := range leftKey {
					lrow[ki] = rrow[rightKey[i]]
				}
				emitLeft(lrow, rrow)
				continue
			}
			for _, li := range lmatches {
				emitLeft(left.rows[li], rrow)
			}
		}
		return New(cols, rows)
	}

	for _, lrow := range left.rows {
		k, ok := matchKey(lrow, leftKey)
		var rmatches []int
		if ok {
			rmatches = index[k]
		}
		if len(rmatches) == 0 {
			if how == JoinLeft || how == JoinOuter {
				emitLeft(lrow, nil)
			}
			continue
		}
		for _, ri := range rmatches {
			matched[ri] = struct{}{}
			emitLeft(lrow, right.rows[ri])
		}
	}
	if how == JoinOuter {
		for i, rrow := range right.rows {
			if _, ok := matched[i]; ok {
				continue
			}
			lrow := make([]Value, left.NumCols())
			for j, ki := range leftKey {
				lrow[ki] = rrow[rightKey[j]]
			}
			emitLeft(lrow, rrow)
		}
	}
	return New(cols, rows)
}

// matchKey encodes a row's join key. ok is false when any key cell is
// null, in which case the row can never match.
func matchKey(row []Value, idxs []int) (string, bool) {
	for _, idx := range idxs {
		if row[idx].IsNull() {
			return "", false
		}
	}
	return rowKeyAt(row, idxs), true
}
