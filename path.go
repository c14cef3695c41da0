package templatepro

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// pathSegment is one step of a dotted variable path, with an optional
// bracket index (name[2] has index 2).
type pathSegment struct {
	name  string
	index int
	hasIx bool
}

// splitPath breaks "a.b[2].c" into segments. Bracket contents were already
// validated by the scanner to be digits.
func splitPath(path string) []pathSegment {
	parts := strings.Split(path, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		seg := pathSegment{name: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 {
			end := strings.IndexByte(part, ']')
			if end > open {
				if n, err := strconv.Atoi(part[open+1 : end]); err == nil {
					seg.name = part[:open]
					seg.index = n
					seg.hasIx = true
				}
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// descend applies one path segment to a value: object fields by name, list
// elements by [N], row source columns by name against the current cursor.
func descend(v Value, seg pathSegment) (Value, bool) {
	if seg.name != "" {
		switch v.Kind {
		case ValObject:
			fv, ok := v.Obj.Field(seg.name)
			if !ok {
				return EmptyValue(), false
			}
			v = fv
		case ValRowSource:
			cv, ok := v.Rows.Cell(v.cursor, seg.name)
			if !ok {
				return EmptyValue(), false
			}
			v = cv
		default:
			return EmptyValue(), false
		}
	}
	if seg.hasIx {
		if v.Kind != ValList || v.List == nil {
			return EmptyValue(), false
		}
		if seg.index < 0 || seg.index >= v.List.Len() {
			return EmptyValue(), false
		}
		v = v.List.At(seg.index)
	}
	return v, true
}

// walkPath descends a parsed path relative to a root value.
func walkPath(v Value, segs []pathSegment) (Value, bool) {
	for _, seg := range segs {
		var ok bool
		v, ok = descend(v, seg)
		if !ok {
			return EmptyValue(), false
		}
	}
	return v, true
}

// FromAny projects an arbitrary Go value into the engine's value model.
// Pointers act as nullable wrappers: nil becomes Empty, otherwise the
// pointee is projected. Structs and string-keyed maps become Objects,
// slices and arrays become wrapped Lists.
func FromAny(val interface{}) Value {
	if val == nil {
		return EmptyValue()
	}
	switch v := val.(type) {
	case Value:
		return v
	case string:
		return StringValue(v)
	case bool:
		return BoolValue(v)
	case int:
		return IntValue(int64(v))
	case int32:
		return IntValue(int64(v))
	case int64:
		return IntValue(v)
	case float32:
		return FloatValue(float64(v))
	case float64:
		return FloatValue(v)
	case time.Time:
		return DateTimeValue(v)
	case Object:
		return ObjectValue(v)
	case List:
		return ListValue(v)
	case RowSource:
		return RowsValue(v)
	case []string:
		return ListValue(stringList(v))
	}
	return fromReflect(reflect.ValueOf(val))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return EmptyValue()
		}
		return fromReflect(rv.Elem())
	case reflect.String:
		return StringValue(rv.String())
	case reflect.Bool:
		return BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntValue(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float())
	case reflect.Slice, reflect.Array:
		return ListValue(reflectList{rv})
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return ObjectValue(reflectMap{rv})
		}
	case reflect.Struct:
		if t, ok := rv.Interface().(time.Time); ok {
			return DateTimeValue(t)
		}
		return ObjectValue(reflectStruct{rv})
	}
	return EmptyValue()
}

// stringList avoids reflection for the common []string binding.
type stringList []string

func (s stringList) Len() int       { return len(s) }
func (s stringList) At(i int) Value { return StringValue(s[i]) }

// reflectList wraps any slice or array value.
type reflectList struct {
	rv reflect.Value
}

func (l reflectList) Len() int { return l.rv.Len() }

func (l reflectList) At(i int) Value {
	return fromReflect(l.rv.Index(i))
}

// reflectStruct exposes exported struct fields by case-insensitive name.
type reflectStruct struct {
	rv reflect.Value
}

func (o reflectStruct) Field(name string) (Value, bool) {
	t := o.rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return fromReflect(o.rv.Field(i)), true
		}
	}
	return EmptyValue(), false
}

// reflectMap exposes string-keyed map entries by case-insensitive key.
type reflectMap struct {
	rv reflect.Value
}

func (o reflectMap) Field(name string) (Value, bool) {
	iter := o.rv.MapRange()
	for iter.Next() {
		if strings.EqualFold(iter.Key().String(), name) {
			return fromReflect(iter.Value()), true
		}
	}
	return EmptyValue(), false
}

// SliceRows adapts a slice of string-keyed maps into a RowSource; the CLI
// uses it to feed decoded JSON arrays in as tabular data.
type SliceRows struct {
	Cols []string
	Data []map[string]interface{}
}

func (s *SliceRows) Columns() []string { return s.Cols }
func (s *SliceRows) Len() int          { return len(s.Data) }

func (s *SliceRows) Cell(row int, col string) (Value, bool) {
	if row < 0 || row >= len(s.Data) {
		return EmptyValue(), false
	}
	for k, v := range s.Data[row] {
		if strings.EqualFold(k, col) {
			return FromAny(v), true
		}
	}
	return EmptyValue(), false
}
