package format

import (
	"regexp"
	"strings"
)

// DefaultPriceDelimiter is inserted between digit groups when no delimiter
// option is given.
const DefaultPriceDelimiter = " "

// digitRun matches a maximal run of ASCII decimal digits. Each run is grouped
// independently, anchored on its own right boundary.
var digitRun = regexp.MustCompile(`[0-9]+`)

type priceOptions struct {
	delimiter string
}

// PriceOption configures Price.
type PriceOption func(*priceOptions)

// WithDelimiter sets the string inserted between groups of three digits.
// Any string is accepted, including the empty string.
func WithDelimiter(delimiter string) PriceOption {
	return func(o *priceOptions) { o.delimiter = delimiter }
}

// Price inserts a delimiter every three digits, counted from the right, in
// every run of digits of input. Non-digit characters such as a decimal point
// or a currency sign are copied unchanged and end the current run, so
// "1234.56" becomes "1 234.56".
//
// Runs of three digits or fewer are left untouched. Price never fails.
func Price(input string, opts ...PriceOption) string {
	o := priceOptions{delimiter: DefaultPriceDelimiter}
	for _, opt := range opts {
		opt(&o)
	}
	return digitRun.ReplaceAllStringFunc(input, func(run string) string {
		return groupDigits(run, o.delimiter)
	})
}

// groupDigits splits run into groups of three from the right and joins them
// with delimiter. The leading group holds the remaining one to three digits.
func groupDigits(run, delimiter string) string {
	if len(run) <= 3 {
		return run
	}
	lead := len(run) % 3
	if lead == 0 {
		lead = 3
	}

	var b strings.Builder
	b.Grow(len(run) + (len(run)-1)/3*len(delimiter))
	b.WriteString(run[:lead])
	for i := lead; i < len(run); i += 3 {
		b.WriteString(delimiter)
		b.WriteString(run[i : i+3])
	}
	return b.String()
}
