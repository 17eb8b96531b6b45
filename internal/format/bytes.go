package format

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
)

// DefaultFraction is the number of digits printed after the decimal point
// when no fraction option is given.
const DefaultFraction = 2

// MaxFraction is the largest number of fraction digits Bytes accepts.
// BytesUint clamps to it.
const MaxFraction = 20

// byteSuffixes is the unit suffix table, indexed by the power of 1024.
var byteSuffixes = [...]string{" B", " KB", " MB", " GB", " TB", " PB", " EB", " ZB", " YB"}

// maxUnitIndex is the last index of byteSuffixes. Larger values stay in YB.
const maxUnitIndex = len(byteSuffixes) - 1

// Rounding selects how the scaled value is rounded to the requested number
// of fraction digits. Rounding always operates on the exact binary value of
// the scaled number, so ties only occur for values that are exactly halfway.
type Rounding int

const (
	// RoundHalfAwayFromZero rounds ties to the larger magnitude: 1.125 with two
	// digits gives 1.13. This is the default.
	RoundHalfAwayFromZero Rounding = iota
	// RoundHalfEven rounds ties to the even neighbour: 1.125 gives 1.12.
	RoundHalfEven
)

// String returns the flag spelling of r.
func (r Rounding) String() string {
	switch r {
	case RoundHalfAwayFromZero:
		return "half-away"
	case RoundHalfEven:
		return "half-even"
	default:
		return fmt.Sprintf("Rounding(%d)", int(r))
	}
}

// ParseRounding parses "half-away" or "half-even" (case-insensitive).
func ParseRounding(name string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "half-away", "half-up", "":
		return RoundHalfAwayFromZero, nil
	case "half-even", "bank":
		return RoundHalfEven, nil
	}
	return 0, apperrors.ValidationError{Field: "rounding", Message: fmt.Sprintf("unknown rounding mode %q", name)}
}

type bytesOptions struct {
	fraction int
	rounding Rounding
}

// BytesOption configures Bytes and BytesUint.
type BytesOption func(*bytesOptions)

// WithFraction sets the number of digits printed after the decimal point.
func WithFraction(digits int) BytesOption {
	return func(o *bytesOptions) { o.fraction = digits }
}

// WithRounding sets the rounding mode used for the fraction digits.
func WithRounding(r Rounding) BytesOption {
	return func(o *bytesOptions) { o.rounding = r }
}

func newBytesOptions(opts []BytesOption) bytesOptions {
	o := bytesOptions{fraction: DefaultFraction, rounding: RoundHalfAwayFromZero}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bytes converts a byte count into a human-readable string using base-1024
// units, e.g. 1536 becomes "1.50 KB".
//
// Zero always yields "0 B". The unit index is floor(log1024(n)) clamped to
// [0, 8], so counts of 1024^8 and above stay in YB and fractional counts
// below one byte stay in B.
//
// Negative, NaN or infinite counts and a fraction outside [0, MaxFraction]
// return an apperrors.ValidationError.
func Bytes(n float64, opts ...BytesOption) (string, error) {
	o := newBytesOptions(opts)
	if o.fraction < 0 || o.fraction > MaxFraction {
		return "", apperrors.ValidationError{Field: "fraction", Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxFraction, o.fraction)}
	}
	switch {
	case math.IsNaN(n), math.IsInf(n, 0):
		return "", apperrors.ValidationError{Field: "bytes", Message: fmt.Sprintf("must be finite, got %v", n)}
	case n < 0:
		return "", apperrors.ValidationError{Field: "bytes", Message: fmt.Sprintf("must not be negative, got %v", n)}
	case n == 0:
		return "0 B", nil
	}

	frac, exp := math.Frexp(n)
	index := unitIndex(exp - 1)
	mant := big.NewInt(int64(math.Ldexp(frac, 53)))
	return formatScaled(mant, exp-53-10*index, index, o), nil
}

// BytesUint is the integral counterpart of Bytes. It cannot fail: the
// fraction is clamped to [0, MaxFraction]. The conversion is exact for every
// uint64.
func BytesUint(n uint64, opts ...BytesOption) string {
	o := newBytesOptions(opts)
	o.fraction = max(0, min(o.fraction, MaxFraction))
	if n == 0 {
		return "0 B"
	}
	index := unitIndex(bits.Len64(n) - 1)
	return formatScaled(new(big.Int).SetUint64(n), -10*index, index, o)
}

// unitIndex maps floor(log2(n)) to the suffix table index.
func unitIndex(log2 int) int {
	if log2 < 0 {
		return 0
	}
	return min(log2/10, maxUnitIndex)
}

// formatScaled prints mant * 2^exp2 with the configured fraction digits,
// followed by the suffix for index.
func formatScaled(mant *big.Int, exp2, index int, o bytesOptions) string {
	d := exactDecimal(mant, exp2)
	var s string
	if o.rounding == RoundHalfEven {
		s = d.StringFixedBank(int32(o.fraction))
	} else {
		s = d.StringFixed(int32(o.fraction))
	}
	return s + byteSuffixes[index]
}

// exactDecimal returns mant * 2^exp2 as an exact decimal. A negative power
// of two is rewritten as mant * 5^k / 10^k, which has a finite expansion.
func exactDecimal(mant *big.Int, exp2 int) decimal.Decimal {
	m := new(big.Int).Set(mant)
	if exp2 >= 0 {
		return decimal.NewFromBigInt(m.Lsh(m, uint(exp2)), 0)
	}
	k := int64(-exp2)
	m.Mul(m, new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil))
	return decimal.NewFromBigInt(m, int32(-k))
}
