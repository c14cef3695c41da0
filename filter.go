package templatepro

import (
	"fmt"
	"strings"
	"unicode"
)

// FilterFunc is a named pure function applied to a value with a resolved
// parameter list. Filters report failure through the error; the renderer
// wraps it with the filter name.
type FilterFunc func(v Value, params []Value, fs *FormatSettings) (Value, error)

type filterMap map[string]FilterFunc

func filterKey(name string) string {
	return strings.ToLower(name)
}

func (m filterMap) add(name string, fn FilterFunc) {
	m[filterKey(name)] = fn
}

// builtinFilters returns the default library every template starts with.
func builtinFilters() filterMap {
	m := filterMap{}

	m.add("uppercase", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		return StringValue(strings.ToUpper(fs.FormatValue(v))), nil
	})
	m.add("lowercase", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		return StringValue(strings.ToLower(fs.FormatValue(v))), nil
	})
	m.add("capitalize", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		s := fs.FormatValue(v)
		for i, r := range s {
			return StringValue(string(unicode.ToUpper(r)) + s[i+len(string(r)):]), nil
		}
		return StringValue(s), nil
	})
	m.add("trim", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		return StringValue(strings.TrimSpace(fs.FormatValue(v))), nil
	})
	m.add("padleft", padFilter(true))
	m.add("padright", padFilter(false))

	m.add("substr", func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		if len(params) < 1 || len(params) > 2 {
			return v, fmt.Errorf("want 1 or 2 parameters, got %d", len(params))
		}
		s := []rune(fs.FormatValue(v))
		start, ok := params[0].asInt()
		if !ok {
			return v, fmt.Errorf("start is not a number")
		}
		if start < 0 || int(start) > len(s) {
			return StringValue(""), nil
		}
		end := int64(len(s))
		if len(params) == 2 {
			n, ok := params[1].asInt()
			if !ok {
				return v, fmt.Errorf("length is not a number")
			}
			end = start + n
		}
		if end > int64(len(s)) {
			end = int64(len(s))
		}
		if end < start {
			end = start
		}
		return StringValue(string(s[start:end])), nil
	})

	m.add("startswith", stringPredicate(strings.HasPrefix))
	m.add("endswith", stringPredicate(strings.HasSuffix))
	m.add("contains", stringPredicate(strings.Contains))

	m.add("format", func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		if len(params) != 1 {
			return v, fmt.Errorf("want 1 parameter, got %d", len(params))
		}
		decimals, ok := params[0].asInt()
		if !ok {
			return v, fmt.Errorf("decimals is not a number")
		}
		f, ok := v.asFloat()
		if !ok {
			return v, fmt.Errorf("value is not numeric")
		}
		return StringValue(fs.FormatNumber(f, int(decimals))), nil
	})

	m.add("formatdate", dateFilter(func(fs *FormatSettings) string { return fs.ShortDateFormat }))
	m.add("formattime", dateFilter(func(fs *FormatSettings) string { return fs.LongTimeFormat }))

	m.add("htmlescape", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		return StringValue(EscapeHTML(fs.FormatValue(v))), nil
	})
	m.add("jsonescape", func(v Value, _ []Value, fs *FormatSettings) (Value, error) {
		return StringValue(EscapeJSON(fs.FormatValue(v))), nil
	})

	m.add("size", func(v Value, _ []Value, _ *FormatSettings) (Value, error) {
		switch v.Kind {
		case ValString:
			return IntValue(int64(len([]rune(v.Str)))), nil
		case ValList, ValRowSource:
			return IntValue(int64(v.iterLen())), nil
		case ValEmpty:
			return IntValue(0), nil
		}
		return v, fmt.Errorf("value has no size")
	})

	m.add("eq", compareFilter(func(c int) bool { return c == 0 }, false))
	m.add("ne", compareFilter(func(c int) bool { return c != 0 }, true))
	m.add("gt", compareFilter(func(c int) bool { return c > 0 }, false))
	m.add("ge", compareFilter(func(c int) bool { return c >= 0 }, false))
	m.add("lt", compareFilter(func(c int) bool { return c < 0 }, false))
	m.add("le", compareFilter(func(c int) bool { return c <= 0 }, false))

	return m
}

func padFilter(left bool) FilterFunc {
	return func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		if len(params) < 1 || len(params) > 2 {
			return v, fmt.Errorf("want 1 or 2 parameters, got %d", len(params))
		}
		width, ok := params[0].asInt()
		if !ok {
			return v, fmt.Errorf("width is not a number")
		}
		pad := " "
		if len(params) == 2 {
			pad = params[1].plainString()
			if pad == "" {
				return v, fmt.Errorf("empty pad string")
			}
		}
		s := fs.FormatValue(v)
		for int64(len([]rune(s))) < width {
			if left {
				s = pad + s
			} else {
				s = s + pad
			}
		}
		return StringValue(s), nil
	}
}

func stringPredicate(pred func(s, sub string) bool) FilterFunc {
	return func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		if len(params) != 1 {
			return v, fmt.Errorf("want 1 parameter, got %d", len(params))
		}
		return BoolValue(pred(fs.FormatValue(v), params[0].plainString())), nil
	}
}

func dateFilter(layout func(*FormatSettings) string) FilterFunc {
	return func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		switch v.Kind {
		case ValDate, ValDateTime, ValTime:
		default:
			return v, fmt.Errorf("value is not a date or time")
		}
		l := layout(fs)
		if len(params) == 1 {
			l = params[0].plainString()
		} else if len(params) > 1 {
			return v, fmt.Errorf("want at most 1 parameter, got %d", len(params))
		}
		return StringValue(fs.FormatLayout(v, l)), nil
	}
}

// compareFilter builds one of the comparison filters used inside if
// expressions. Numeric operands compare numerically, dates render through
// the locale short date first, everything else compares as strings. A
// missing value compares false, except ne which yields true.
func compareFilter(take func(int) bool, missing bool) FilterFunc {
	return func(v Value, params []Value, fs *FormatSettings) (Value, error) {
		if len(params) != 1 {
			return v, fmt.Errorf("want exactly 1 parameter, got %d", len(params))
		}
		if v.Kind == ValEmpty {
			return BoolValue(missing), nil
		}
		p := params[0]

		switch {
		case v.Kind == ValInteger:
			n, ok := p.asInt()
			if !ok {
				return v, fmt.Errorf("cannot compare %s with integer", p.Kind)
			}
			return BoolValue(take(compareInt(v.Int, n))), nil
		case v.isNumeric():
			f, _ := v.asFloat()
			pf, ok := p.asFloat()
			if !ok {
				return v, fmt.Errorf("cannot compare %s with number", p.Kind)
			}
			return BoolValue(take(compareFloat(f, pf))), nil
		case v.Kind == ValDate || v.Kind == ValDateTime:
			l := fs.FormatDate(v)
			var rhs string
			if p.Kind == ValDate || p.Kind == ValDateTime {
				rhs = fs.FormatDate(p)
			} else {
				rhs = p.plainString()
			}
			return BoolValue(take(strings.Compare(l, rhs))), nil
		}
		return BoolValue(take(strings.Compare(v.plainString(), p.plainString()))), nil
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
