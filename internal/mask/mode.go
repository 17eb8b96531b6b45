package mask

import (
	"fmt"
	"strings"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
)

// Mode selects the family of default options a field is masked with.
type Mode int

const (
	// Card masks credit card numbers.
	Card Mode = iota + 1
	// Phone masks phone numbers with a prefix and delimited blocks.
	Phone
	// Date masks dates following a date pattern.
	Date
	// Time masks times following a time pattern.
	Time
	// Number masks numerals with thousands grouping.
	Number
)

var modeNames = map[Mode]string{
	Card:   "card",
	Phone:  "phone",
	Date:   "date",
	Time:   "time",
	Number: "number",
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	return []Mode{Card, Phone, Date, Time, Number}
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(name string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Modes() {
		if modeNames[m] == want {
			return m, nil
		}
	}
	return 0, apperrors.NewConfigError("unknown mask mode %q (want one of card, phone, date, time, number)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, apperrors.NewConfigError("invalid mask mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// GroupStyle is the thousands grouping style of numeral masks.
type GroupStyle string

const (
	GroupThousand GroupStyle = "thousand" // 1,234,567
	GroupLakh     GroupStyle = "lakh"     // 12,34,567
	GroupWan      GroupStyle = "wan"      // 123,4567
	GroupNone     GroupStyle = "none"
)

// ParseGroupStyle validates a grouping style name.
func ParseGroupStyle(name string) (GroupStyle, error) {
	switch s := GroupStyle(strings.ToLower(strings.TrimSpace(name))); s {
	case GroupThousand, GroupLakh, GroupWan, GroupNone:
		return s, nil
	}
	return "", apperrors.NewConfigError("unknown thousands group style %q (want thousand, lakh, wan or none)", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GroupStyle) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupStyle(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
