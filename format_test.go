package templatepro

import (
	"testing"
	"time"

	"github.com/goodsign/monday"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatValueScalars(t *testing.T) {
	fs := DefaultFormatSettings()
	assert.Equal(t, "42", fs.FormatValue(IntValue(42)))
	assert.Equal(t, "2.5", fs.FormatValue(FloatValue(2.5)))
	assert.Equal(t, "true", fs.FormatValue(BoolValue(true)))
	assert.Equal(t, "hi", fs.FormatValue(StringValue("hi")))
	assert.Equal(t, "", fs.FormatValue(EmptyValue()))
	assert.Equal(t, "10.50", fs.FormatValue(CurrencyValue(10.5)))
}

func TestFormatValueDates(t *testing.T) {
	fs := DefaultFormatSettings()
	d := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "2024-03-09", fs.FormatValue(DateValue(d)))
	assert.Equal(t, "2024-03-09 14:30:05", fs.FormatValue(DateTimeValue(d)))
	assert.Equal(t, "14:30:05", fs.FormatValue(TimeValue(d)))
}

func TestFormatDateLocale(t *testing.T) {
	fs := DefaultFormatSettings()
	fs.Locale = monday.LocaleDeDE
	fs.ShortDateFormat = "2 January 2006"
	d := DateValue(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "9 März 2024", fs.FormatDate(d))
}

func TestFormatNumberInvariant(t *testing.T) {
	fs := DefaultFormatSettings()
	assert.Equal(t, "1234.50", fs.FormatNumber(1234.5, 2))
	assert.Equal(t, "1234.5", fs.FormatNumber(1234.5, -1))
}

func TestFormatNumberLocaleGrouping(t *testing.T) {
	fs := DefaultFormatSettings()
	fs.Tag = language.AmericanEnglish
	assert.Equal(t, "1,234.50", fs.FormatNumber(1234.5, 2))
}

func TestCurrencySymbol(t *testing.T) {
	fs := DefaultFormatSettings()
	fs.CurrencySymbol = "$"
	assert.Equal(t, "$3.00", fs.FormatValue(CurrencyValue(3)))
}
