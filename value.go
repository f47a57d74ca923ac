package medallion

import (
	"math"
	"strconv"
	"time"
)

type kind uint8

const (
	kindNull kind = iota
	kindInt
	kindFloat
	kindString
	kindTime
)

// Value is a single table cell. The zero Value is null. Values are
// immutable - all table operations produce new Values rather than
// modifying existing ones.
type Value struct {
	kind kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// NullValue returns the null cell.
func NullValue() Value { return Value{} }

// IntValue returns an integer cell.
func IntValue(i int64) Value { return Value{kind: kindInt, i: i} }

// FloatValue returns a floating point cell.
func FloatValue(f float64) Value { return Value{kind: kindFloat, f: f} }

// StringValue returns a string cell.
func StringValue(s string) Value { return Value{kind: kindString, s: s} }

// TimeValue returns a timestamp cell.
func TimeValue(t time.Time) Value { return Value{kind: kindTime, t: t} }

// IsNull reports whether v is the null cell.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Int64 returns the integer payload of v. ok is false if v is not an
// integer cell.
func (v Value) Int64() (i int64, ok bool) {
	return v.i, v.kind == kindInt
}

// Float64 returns the numeric payload of v as a float64. ok is false if v
// holds neither an integer nor a float.
func (v Value) Float64() (f float64, ok bool) {
	switch v.kind {
	case kindInt:
		return float64(v.i), true
	case kindFloat:
		return v.f, true
	}
	return 0, false
}

// Time returns the timestamp payload of v. ok is false if v is not a
// timestamp cell.
func (v Value) Time() (t time.Time, ok bool) {
	return v.t, v.kind == kindTime
}

// String renders v the way it appears in a CSV file. Null renders as the
// empty string.
func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case kindString:
		return v.s
	case kindTime:
		return v.t.UTC().Format(time.RFC3339)
	}
	return ""
}

// Equal reports whether two cells hold the same value. Integers and floats
// compare numerically, so IntValue(3) equals FloatValue(3).
func (v Value) Equal(o Value) bool {
	if v.kind == kindInt && o.kind == kindInt {
		return v.i == o.i
	}
	vf, vok := v.Float64()
	of, ook := o.Float64()
	if vok && ook {
		return vf == of
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindNull:
		return true
	case kindString:
		return v.s == o.s
	case kindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// Less defines a total order over cells used for sorting aggregation
// output. Nulls sort first, then numbers, strings, and timestamps.
func (v Value) Less(o Value) bool {
	if v.kind == kindNull || o.kind == kindNull {
		return v.kind == kindNull && o.kind != kindNull
	}
	vf, vok := v.Float64()
	of, ook := o.Float64()
	if vok && ook {
		return vf < of
	}
	if vok != ook {
		return vok // numbers before strings and times
	}
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	switch v.kind {
	case kindString:
		return v.s < o.s
	case kindTime:
		return v.t.Before(o.t)
	}
	return false
}

// key returns a canonical encoding of v such that two cells have the same
// key exactly when they are Equal. Used for deduplication, grouping and
// join hashing.
func (v Value) key() string {
	switch v.kind {
	case kindInt:
		return "\x01" + strconv.FormatInt(v.i, 10)
	case kindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f <= math.MaxInt64 {
			return "\x01" + strconv.FormatInt(int64(v.f), 10)
		}
		return "\x01" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case kindString:
		return "\x02" + v.s
	case kindTime:
		return "\x03" + v.t.UTC().Format(time.RFC3339Nano)
	}
	return "\x00"
}

// FieldParser parses a single raw CSV field into a typed cell.
type FieldParser interface {
	ParseField(field string) (Value, error)
}

// IntParser parses integer fields.
type IntParser struct{}

// FloatParser parses floating point fields.
type FloatParser struct{}

// StringParser is an identity parser for string fields.
type StringParser struct{}

// TimeParser parses timestamp fields with a fixed layout.
type TimeParser struct {
	Layout string
}

// ParseField parses an integer string to an integer cell.
func (p IntParser) ParseField(field string) (Value, error) {
	i, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return NullValue(), err
	}
	return IntValue(i), nil
}

// ParseField parses a float string to a float cell.
func (p FloatParser) ParseField(field string) (Value, error) {
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return NullValue(), err
	}
	return FloatValue(f), nil
}

// ParseField wraps a string field in a string cell.
func (p StringParser) ParseField(field string) (Value, error) {
	return StringValue(field), nil
}

// ParseField parses a timestamp string to a timestamp cell.
func (p TimeParser) ParseField(field string) (Value, error) {
	t, err := time.Parse(p.Layout, field)
	if err != nil {
		return NullValue(), err
	}
	return TimeValue(t), nil
}
