package templatepro

import (
	"strconv"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatSettings carries the locale configuration a render uses for
// numbers, dates and times. The zero-locale default is an invariant base
// with yyyy-mm-dd short dates.
type FormatSettings struct {
	// Tag drives number grouping and decimal separators.
	Tag language.Tag
	// Locale drives month and day names through monday.
	Locale monday.Locale

	ShortDateFormat string
	LongDateFormat  string
	ShortTimeFormat string
	LongTimeFormat  string
	DateTimeFormat  string

	CurrencyDecimals int
	CurrencySymbol   string
}

// DefaultFormatSettings returns the invariant configuration.
func DefaultFormatSettings() *FormatSettings {
	return &FormatSettings{
		Tag:              language.Und,
		Locale:           monday.LocaleEnUS,
		ShortDateFormat:  "2006-01-02",
		LongDateFormat:   "Monday, 2 January 2006",
		ShortTimeFormat:  "15:04",
		LongTimeFormat:   "15:04:05",
		DateTimeFormat:   "2006-01-02 15:04:05",
		CurrencyDecimals: 2,
	}
}

// FormatValue renders a scalar through the locale settings. Objects, lists
// and row sources have no scalar form and render empty.
func (fs *FormatSettings) FormatValue(v Value) string {
	switch v.Kind {
	case ValInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat, ValBcd:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case ValCurrency:
		s := fs.FormatNumber(v.Float, fs.CurrencyDecimals)
		if fs.CurrencySymbol != "" {
			return fs.CurrencySymbol + s
		}
		return s
	case ValBoolean, ValString:
		return v.plainString()
	case ValDate:
		return fs.FormatDate(v)
	case ValDateTime:
		return monday.Format(v.Time, fs.DateTimeFormat, fs.Locale)
	case ValTime:
		return monday.Format(v.Time, fs.LongTimeFormat, fs.Locale)
	}
	return ""
}

// FormatDate renders the short-date form used both for output and for the
// comparison filters' date semantics.
func (fs *FormatSettings) FormatDate(v Value) string {
	return monday.Format(v.Time, fs.ShortDateFormat, fs.Locale)
}

// FormatLayout renders a date or time value through an explicit layout
// with the locale's month and day names.
func (fs *FormatSettings) FormatLayout(v Value, layout string) string {
	return monday.Format(v.Time, layout, fs.Locale)
}

// FormatNumber renders a float with the locale's grouping and decimal
// separators at the given precision. A negative precision keeps the
// shortest representation and skips grouping.
func (fs *FormatSettings) FormatNumber(f float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if fs.Tag == language.Und {
		return strconv.FormatFloat(f, 'f', decimals, 64)
	}
	p := message.NewPrinter(fs.Tag)
	return p.Sprint(number.Decimal(f, number.Scale(decimals)))
}
