package medallion

import (
	"fmt"
	"sort"
	"strings"
)

// Expected column type names accepted by ValidateSchema and by the silver
// layer's type casting.
const (
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeString   = "str"
	TypeDatetime = "datetime"
)

// ValidateSchema checks a table against a set of required columns and,
// optionally, expected column types. It returns a ValidationError when a
// required column is missing or an observed type conflicts with the
// expected one. Integer and float columns are treated as interchangeable
// numerics. Columns whose cells are all null carry no type evidence and
// pass any expectation.
func ValidateSchema(t *Table, required []string, types map[string]string) error {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !t.HasColumn(name) {
			continue
		}
		observed := t.columnType(name)
		if observed == "" {
			continue
		}
		want := types[name]
		if observed == want {
			continue
		}
		if isNumericType(observed) && isNumericType(want) {
			continue
		}
		return &ValidationError{Reason: fmt.Sprintf("column %q has type %s, expected %s", name, observed, want)}
	}
	return nil
}

func isNumericType(name string) bool {
	return name == TypeInt || name == TypeFloat
}

// columnType reports the observed type of a column: TypeInt if every
// non-null cell is an integer, TypeFloat for a mix of integers and floats,
// TypeString or TypeDatetime for uniform string or timestamp cells, and
// TypeString for any other mix. An all-null column reports "".
func (t *Table) columnType(name string) string {
	idx, ok := t.colIndex(name)
	if !ok {
		return ""
	}
	observed := ""
	for _, row := range t.rows {
		v := row[idx]
		if v.IsNull() {
			continue
		}
		var kt string
		switch v.kind {
		case kindInt:
			kt = TypeInt
		case kindFloat:
			kt = TypeFloat
		case kindTime:
			kt = TypeDatetime
		default:
			kt = TypeString
		}
		switch {
		case observed == "" || observed == kt:
			observed = kt
		case isNumericType(observed) && isNumericType(kt):
			observed = TypeFloat
		default:
			return TypeString
		}
	}
	return observed
}
