package format

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPrice_PropertyBased checks the grouping invariants of Price on random
// digit strings: removing the delimiters restores the input, the leading
// group has one to three digits and every following group has exactly three.
func TestPrice_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("delimiters can be stripped back to the input", prop.ForAll(
		func(s string) bool {
			return strings.ReplaceAll(Price(s), " ", "") == s
		},
		gen.NumString(),
	))

	properties.Property("groups are well formed", prop.ForAll(
		func(s string) bool {
			if s == "" {
				return Price(s) == ""
			}
			groups := strings.Split(Price(s, WithDelimiter(",")), ",")
			if len(groups[0]) < 1 || len(groups[0]) > 3 {
				return false
			}
			for _, g := range groups[1:] {
				if len(g) != 3 {
					return false
				}
			}
			return true
		},
		gen.NumString(),
	))

	properties.Property("a second pass with a space delimiter is a no-op", prop.ForAll(
		func(s string) bool {
			once := Price(s)
			return Price(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestBytes_PropertyBased checks that Bytes picks the unit whose scaled value
// lies in [1, 1024] and that the float and integer entry points agree.
func TestBytes_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("scaled value lies in [1, 1024]", prop.ForAll(
		func(n uint64) bool {
			s, err := Bytes(float64(n))
			if err != nil {
				t.Logf("Bytes(%d) error: %v", n, err)
				return false
			}
			num, _, ok := strings.Cut(s, " ")
			if !ok {
				return false
			}
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return false
			}
			return v >= 1 && v <= 1024
		},
		gen.UInt64Range(1, 1<<62),
	))

	properties.Property("float and integer variants agree below 2^53", prop.ForAll(
		func(n uint64) bool {
			s, err := Bytes(float64(n))
			return err == nil && s == BytesUint(n)
		},
		gen.UInt64Range(0, 1<<53),
	))

	properties.Property("suffix matches floor(log1024(n))", prop.ForAll(
		func(n uint64) bool {
			v, index := float64(n), 0
			for v >= 1024 && index < maxUnitIndex {
				v /= 1024
				index++
			}
			return strings.HasSuffix(BytesUint(n), byteSuffixes[index])
		},
		gen.UInt64Range(1, 1<<50),
	))

	properties.TestingRun(t)
}
