package silver

import (
	"math"
	"strconv"
	"strings"
	"time"

	medallion "github.com/rigo1999/medellion-datawarehousing"
)

// DefaultDateLayout is the target layout StandardizeDates uses when the
// caller passes an empty one.
const DefaultDateLayout = "2006-01-02"

// dateLayouts are the input formats StandardizeDates and datetime casting
// accept, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// CleanColumnNames standardizes every column name: lower-cased, trimmed,
// spaces and hyphens replaced with underscores. It is a pure function
// suitable for use as a transformation step and does not persist anything.
func CleanColumnNames(t *medallion.Table) (*medallion.Table, error) {
	cols := t.Columns()
	for i, col := range cols {
		col = strings.ToLower(strings.TrimSpace(col))
		col = strings.ReplaceAll(col, " ", "_")
		col = strings.ReplaceAll(col, "-", "_")
		cols[i] = col
	}
	return t.WithColumnNames(cols)
}

// StandardizeDates returns a transformation that re-renders the named
// columns as date strings in the given layout (DefaultDateLayout if
// empty). Cells that parse under none of the accepted input formats
// become null. Columns absent from the table are silently skipped.
func StandardizeDates(dateColumns []string, layout string) medallion.Transform {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return medallion.TransformFunc(func(t *medallion.Table) (*medallion.Table, error) {
		return mapColumns(t, dateColumns, func(v medallion.Value) medallion.Value {
			parsed, ok := parseDate(v)
			if !ok {
				return medallion.NullValue()
			}
			return medallion.StringValue(parsed.Format(layout))
		})
	})
}

// CastTypes returns a transformation that coerces columns to the types
// named in the mapping: medallion.TypeInt, TypeFloat, TypeString or
// TypeDatetime. Unparseable cells become null. Absent columns and unknown
// type names are silently skipped.
func CastTypes(types map[string]string) medallion.Transform {
	return medallion.TransformFunc(func(t *medallion.Table) (*medallion.Table, error) {
		result := t.Clone()
		var err error
		for col, target := range types {
			cast, ok := caster(target)
			if !ok {
				continue
			}
			result, err = mapColumns(result, []string{col}, cast)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	})
}

func caster(target string) (func(medallion.Value) medallion.Value, bool) {
	switch target {
	case medallion.TypeInt:
		return castInt, true
	case medallion.TypeFloat:
		return castFloat, true
	case medallion.TypeString:
		return castString, true
	case medallion.TypeDatetime:
		return castDatetime, true
	}
	return nil, false
}

func castInt(v medallion.Value) medallion.Value {
	if v.IsNull() {
		return v
	}
	if i, ok := v.Int64(); ok {
		return medallion.IntValue(i)
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return medallion.NullValue()
	}
	return medallion.IntValue(int64(f))
}

func castFloat(v medallion.Value) medallion.Value {
	if v.IsNull() {
		return v
	}
	if f, ok := v.Float64(); ok {
		return medallion.FloatValue(f)
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return medallion.NullValue()
	}
	return medallion.FloatValue(f)
}

func castString(v medallion.Value) medallion.Value {
	if v.IsNull() {
		return v
	}
	return medallion.StringValue(v.String())
}

func castDatetime(v medallion.Value) medallion.Value {
	parsed, ok := parseDate(v)
	if !ok {
		return medallion.NullValue()
	}
	return medallion.TimeValue(parsed)
}

func parseDate(v medallion.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	if v.IsNull() {
		return time.Time{}, false
	}
	s := strings.TrimSpace(v.String())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mapColumns applies fn to every cell of the named columns, skipping
// columns the table does not have.
func mapColumns(t *medallion.Table, columns []string, fn func(medallion.Value) medallion.Value) (*medallion.Table, error) {
	result := t
	for _, col := range columns {
		if !result.HasColumn(col) {
			continue
		}
		vals, err := result.Column(col)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = fn(v)
		}
		result, err = result.ReplaceColumn(col, vals)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
