// Package numfmt formats amounts for display in a configured locale.
package numfmt

import (
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mpz/devops/tools/value-distribution/internal/constants"
)

// Formatter renders numbers with the grouping and decimal separators of one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a formatter for the BCP 47 locale. An empty locale selects
// DefaultLocale.
func New(locale string) (*Formatter, error) {
	if locale == "" {
		locale = constants.DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrapf(err, "parse locale %q", locale)
	}
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
	}, nil
}

// Default returns a formatter for DefaultLocale.
func Default() *Formatter {
	f, err := New(constants.DefaultLocale)
	if err != nil {
		panic("default locale invalid: " + err.Error())
	}
	return f
}

// Locale returns the locale tag in use.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Format renders v with at most MaxFractionDigits fraction digits.
func (f *Formatter) Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(constants.MaxFractionDigits)))
}
