package columns

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/vtable/pkg/errors"
)

// Value is a typed cell value. The set is closed: [Number], [Text] and
// [Currency] are the only implementations.
type Value interface {
	isValue()
}

// Number is an integral cell value (ids, ages).
type Number int64

// Text is a free-form cell value.
type Text string

// Currency is a monetary amount in the formatter's currency.
type Currency float64

func (Number) isValue()   {}
func (Text) isValue()     {}
func (Currency) isValue() {}

// Formatter renders typed values. Renderers inject one; nothing in this
// package assumes a locale.
type Formatter interface {
	Number(Number) string
	Text(Text) string
	Currency(Currency) string
}

// Format dispatches v to the matching Formatter method.
func Format(v Value, f Formatter) string {
	switch v := v.(type) {
	case Number:
		return f.Number(v)
	case Text:
		return f.Text(v)
	case Currency:
		return f.Currency(v)
	}
	return ""
}

// PlainFormatter formats without locale data: decimal integers and amounts
// with two fractional digits. Used for machine-readable output.
type PlainFormatter struct{}

// Number implements Formatter.
func (PlainFormatter) Number(n Number) string { return strconv.FormatInt(int64(n), 10) }

// Text implements Formatter.
func (PlainFormatter) Text(s Text) string { return string(s) }

// Currency implements Formatter.
func (PlainFormatter) Currency(c Currency) string { return strconv.FormatFloat(float64(c), 'f', 2, 64) }

// LocaleFormatter formats currency amounts with locale-specific symbols and
// separators. Numbers are printed without grouping, as ids and ages read
// better that way.
type LocaleFormatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewLocaleFormatter returns a formatter for a BCP 47 locale ("pt-BR") and an
// ISO 4217 currency code ("BRL").
func NewLocaleFormatter(locale, code string) (*LocaleFormatter, error) {
	if err := errors.ValidateLocale(locale); err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse locale %q", locale)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse currency %q", code)
	}
	return &LocaleFormatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Number implements Formatter.
func (f *LocaleFormatter) Number(n Number) string { return strconv.FormatInt(int64(n), 10) }

// Text implements Formatter.
func (f *LocaleFormatter) Text(s Text) string { return string(s) }

// Currency implements Formatter.
func (f *LocaleFormatter) Currency(c Currency) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(float64(c))))
}
