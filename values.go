package templatepro

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValEmpty ValueKind = iota
	ValInteger
	ValFloat
	ValBoolean
	ValString
	ValDate
	ValDateTime
	ValTime
	ValCurrency
	ValBcd
	ValObject
	ValRowSource
	ValList
)

var valueKindNames = [...]string{
	ValEmpty:     "Empty",
	ValInteger:   "Integer",
	ValFloat:     "Float",
	ValBoolean:   "Boolean",
	ValString:    "String",
	ValDate:      "Date",
	ValDateTime:  "DateTime",
	ValTime:      "Time",
	ValCurrency:  "Currency",
	ValBcd:       "Bcd",
	ValObject:    "Object",
	ValRowSource: "RowSource",
	ValList:      "List",
}

func (k ValueKind) String() string { return valueKindNames[k] }

// Object is the capability a record-like value exposes: field or property
// access by name. Lookups are case-insensitive for reflective adapters.
type Object interface {
	Field(name string) (Value, bool)
}

// List is the capability a wrapped list-like value exposes.
type List interface {
	Len() int
	At(i int) Value
}

// RowSource is a tabular source with named columns. Cell addresses a column
// of one row; the row in play is carried on the Value cursor.
type RowSource interface {
	Columns() []string
	Len() int
	Cell(row int, col string) (Value, bool)
}

// Value is the uniform dynamically typed value the interpreter evaluates.
// Exactly one variant is populated according to Kind. cursor selects the
// current row of a RowSource value.
type Value struct {
	Kind   ValueKind
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	Time   time.Time
	Obj    Object
	Rows   RowSource
	List   List
	cursor int
}

func EmptyValue() Value              { return Value{Kind: ValEmpty} }
func IntValue(n int64) Value         { return Value{Kind: ValInteger, Int: n} }
func FloatValue(f float64) Value     { return Value{Kind: ValFloat, Float: f} }
func BoolValue(b bool) Value         { return Value{Kind: ValBoolean, Bool: b} }
func StringValue(s string) Value     { return Value{Kind: ValString, Str: s} }
func DateValue(t time.Time) Value    { return Value{Kind: ValDate, Time: t} }
func DateTimeValue(t time.Time) Value { return Value{Kind: ValDateTime, Time: t} }
func TimeValue(t time.Time) Value    { return Value{Kind: ValTime, Time: t} }
func CurrencyValue(f float64) Value  { return Value{Kind: ValCurrency, Float: f} }
func BcdValue(f float64) Value       { return Value{Kind: ValBcd, Float: f} }
func ObjectValue(o Object) Value     { return Value{Kind: ValObject, Obj: o} }
func RowsValue(r RowSource) Value    { return Value{Kind: ValRowSource, Rows: r} }
func ListValue(l List) Value         { return Value{Kind: ValList, List: l} }

// HasValue reports whether the value carries anything at all. Nullable
// scalars that decoded to nothing arrive here as ValEmpty.
func (v Value) HasValue() bool { return v.Kind != ValEmpty }

// IsIterable reports whether a for loop can run over the value.
func (v Value) IsIterable() bool {
	switch v.Kind {
	case ValList:
		return v.List != nil
	case ValRowSource:
		return v.Rows != nil
	}
	return false
}

// iterLen is the element count of an iterable, 0 otherwise.
func (v Value) iterLen() int {
	switch v.Kind {
	case ValList:
		if v.List != nil {
			return v.List.Len()
		}
	case ValRowSource:
		if v.Rows != nil {
			return v.Rows.Len()
		}
	}
	return 0
}

// elem selects element i of an iterable. Row sources stay wrapped with the
// cursor moved so column access resolves against the right row.
func (v Value) elem(i int) Value {
	switch v.Kind {
	case ValList:
		return v.List.At(i)
	case ValRowSource:
		return Value{Kind: ValRowSource, Rows: v.Rows, cursor: i}
	}
	return EmptyValue()
}

// Truthy implements the boolean coercion used by if: Empty is false,
// Boolean is itself, anything else is false iff its plain string form is
// "false", "0" or empty (case-insensitive).
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValEmpty:
		return false
	case ValBoolean:
		return v.Bool
	}
	s := v.plainString()
	switch {
	case s == "":
		return false
	case strings.EqualFold(s, "false"):
		return false
	case s == "0":
		return false
	}
	return true
}

// plainString is the locale-free string form used by truthiness and string
// comparisons. Locale-aware rendering lives on FormatSettings.
func (v Value) plainString() string {
	switch v.Kind {
	case ValEmpty:
		return ""
	case ValInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat, ValBcd:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case ValCurrency:
		return strconv.FormatFloat(v.Float, 'f', 2, 64)
	case ValBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValString:
		return v.Str
	case ValDate:
		return v.Time.Format("2006-01-02")
	case ValDateTime:
		return v.Time.Format("2006-01-02 15:04:05")
	case ValTime:
		return v.Time.Format("15:04:05")
	}
	return ""
}

// isNumeric reports whether comparison filters should coerce numerically.
func (v Value) isNumeric() bool {
	switch v.Kind {
	case ValInteger, ValFloat, ValCurrency, ValBcd:
		return true
	}
	return false
}

func (v Value) asFloat() (float64, bool) {
	switch v.Kind {
	case ValInteger:
		return float64(v.Int), true
	case ValFloat, ValCurrency, ValBcd:
		return v.Float, true
	case ValString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case ValBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) asInt() (int64, bool) {
	switch v.Kind {
	case ValInteger:
		return v.Int, true
	case ValFloat, ValCurrency, ValBcd:
		return int64(v.Float), true
	case ValString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case ValBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
