package format

import (
	"testing"
)

func TestPrice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		opts  []PriceOption
		want  string
	}{
		{"empty", "", nil, ""},
		{"single digit", "7", nil, "7"},
		{"three digits unchanged", "123", nil, "123"},
		{"four digits", "1234", nil, "1 234"},
		{"seven digits", "1234567", nil, "1 234 567"},
		{"six digits", "123456", nil, "123 456"},
		{"decimal suffix excluded", "1234.56", nil, "1 234.56"},
		{"long fraction grouped on its own", "1234.5678", nil, "1 234.5 678"},
		{"currency prefix", "$1234567", nil, "$1 234 567"},
		{"currency suffix", "1000000 ₽", nil, "1 000 000 ₽"},
		{"non digits only", "abc", nil, "abc"},
		{"multiple runs", "12345 and 678901", nil, "12 345 and 678 901"},
		{"comma delimiter", "1234567", []PriceOption{WithDelimiter(",")}, "1,234,567"},
		{"empty delimiter", "1234567", []PriceOption{WithDelimiter("")}, "1234567"},
		{"multi char delimiter", "1234567", []PriceOption{WithDelimiter("'_")}, "1'_234'_567"},
		{"last option wins", "1234", []PriceOption{WithDelimiter(","), WithDelimiter(".")}, "1.234"},
		{"unicode digits are not grouped", "١٢٣٤٥", nil, "١٢٣٤٥"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Price(tt.input, tt.opts...); got != tt.want {
				t.Errorf("Price(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestPrice_DelimiterGroupsIdentically checks that a custom delimiter only
// changes the joining string, never the grouping.
func TestPrice_DelimiterGroupsIdentically(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"1", "12345", "9876543210", "1234.56", "x1000y100000"} {
		spaced := Price(in)
		commas := Price(in, WithDelimiter(","))
		if want := replaceInserted(spaced, in, ","); commas != want {
			t.Errorf("Price(%q, \",\") = %q, want %q", in, commas, want)
		}
	}
}

// replaceInserted rebuilds formatted with the inserted delimiters (spaces not
// present in the original) swapped for delimiter.
func replaceInserted(formatted, original, delimiter string) string {
	out := make([]byte, 0, len(formatted))
	j := 0
	for i := 0; i < len(formatted); i++ {
		if j < len(original) && formatted[i] == original[j] {
			out = append(out, formatted[i])
			j++
			continue
		}
		out = append(out, delimiter...)
	}
	return string(out)
}

// TestPrice_NotIdempotent documents that grouping is one pass: reformatting
// output with a digit-bearing delimiter regroups the digits again.
func TestPrice_NotIdempotent(t *testing.T) {
	t.Parallel()

	once := Price("1234567", WithDelimiter("0"))
	if once != "102340567" {
		t.Fatalf("first pass = %q, want %q", once, "102340567")
	}
	if twice := Price(once, WithDelimiter("0")); twice != "10203400567" {
		t.Errorf("second pass = %q, want %q", twice, "10203400567")
	}

	// A non-digit delimiter leaves runs of at most three digits, so a second
	// pass is a no-op.
	spaced := Price("1234567")
	if again := Price(spaced); again != spaced {
		t.Errorf("Price(%q) = %q, want unchanged", spaced, again)
	}
}

func BenchmarkPrice(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Price("12345678901234567890.99")
	}
}
