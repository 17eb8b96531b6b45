package mask

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Key names an engine option. The names match the option names the
// browser-side masking engine reads.
type Key string

const (
	KeyCreditCard  Key = "creditCard"
	KeyDate        Key = "date"
	KeyTime        Key = "time"
	KeyNumeral     Key = "numeral"
	KeyNumericOnly Key = "numericOnly"
	KeyPrefix      Key = "prefix"
	KeyBlocks      Key = "blocks"
	KeyDelimiter   Key = "delimiter"
	KeyDelimiters  Key = "delimiters"
	KeyDatePattern Key = "datePattern"
	KeyTimePattern Key = "timePattern"
	KeyGroupStyle  Key = "numeralThousandsGroupStyle"
)

// keyOrder is the serialization order of Config.
var keyOrder = []Key{
	KeyCreditCard, KeyDate, KeyTime, KeyNumeral, KeyNumericOnly,
	KeyPrefix, KeyBlocks, KeyDelimiter, KeyDelimiters,
	KeyDatePattern, KeyTimePattern, KeyGroupStyle,
}

// Config is the merged option set handed to an Engine.
//
// A key counts as present when it was set through an Option or holds a
// non-zero value. Presence is what distinguishes an explicit empty delimiter
// from an absent one; only present keys are serialized.
type Config struct {
	CreditCard  bool
	Date        bool
	Time        bool
	Numeral     bool
	NumericOnly bool
	Prefix      string
	Blocks      []int
	Delimiter   string
	Delimiters  []string
	DatePattern []string
	TimePattern []string
	GroupStyle  GroupStyle

	set keySet
}

// keySet records the keys set through Options, one bit per keyOrder index.
type keySet uint16

func (s keySet) has(k Key) bool { return s&keyBit(k) != 0 }

func keyBit(k Key) keySet {
	if i := slices.Index(keyOrder, k); i >= 0 {
		return 1 << i
	}
	return 0
}

// Option overrides one key of a Config. Slice values replace the default
// slice wholesale and are copied.
type Option func(*Config)

func (c *Config) mark(k Key) { c.set |= keyBit(k) }

func withFlag(k Key, field func(*Config) *bool, v bool) Option {
	return func(c *Config) {
		*field(c) = v
		c.mark(k)
	}
}

// WithNumericOnly sets numericOnly.
func WithNumericOnly(v bool) Option {
	return withFlag(KeyNumericOnly, func(c *Config) *bool { return &c.NumericOnly }, v)
}

// WithPrefix sets the prefix kept in front of the value, e.g. a country code.
func WithPrefix(prefix string) Option {
	return func(c *Config) {
		c.Prefix = prefix
		c.mark(KeyPrefix)
	}
}

// WithBlocks sets the block lengths.
func WithBlocks(blocks ...int) Option {
	blocks = copyOf(blocks)
	return func(c *Config) {
		c.Blocks = copyOf(blocks)
		c.mark(KeyBlocks)
	}
}

// WithDelimiter sets the single delimiter used between blocks.
func WithDelimiter(delimiter string) Option {
	return func(c *Config) {
		c.Delimiter = delimiter
		c.mark(KeyDelimiter)
	}
}

// WithDelimiters sets per-block delimiters.
func WithDelimiters(delimiters ...string) Option {
	delimiters = copyOf(delimiters)
	return func(c *Config) {
		c.Delimiters = copyOf(delimiters)
		c.mark(KeyDelimiters)
	}
}

// WithDatePattern sets the date token pattern, e.g. "d", "m", "Y".
func WithDatePattern(tokens ...string) Option {
	tokens = copyOf(tokens)
	return func(c *Config) {
		c.DatePattern = copyOf(tokens)
		c.mark(KeyDatePattern)
	}
}

// WithTimePattern sets the time token pattern, e.g. "h", "m", "s".
func WithTimePattern(tokens ...string) Option {
	tokens = copyOf(tokens)
	return func(c *Config) {
		c.TimePattern = copyOf(tokens)
		c.mark(KeyTimePattern)
	}
}

// WithGroupStyle sets the numeral thousands grouping style.
func WithGroupStyle(style GroupStyle) Option {
	return func(c *Config) {
		c.GroupStyle = style
		c.mark(KeyGroupStyle)
	}
}

// copyOf returns a non-nil copy of s.
func copyOf[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

// modeDefaults lists the fixed default options of each mode, mode flag first.
var modeDefaults = map[Mode][]Option{
	Card: {
		withFlag(KeyCreditCard, func(c *Config) *bool { return &c.CreditCard }, true),
	},
	Phone: {
		WithNumericOnly(true),
		WithPrefix("+7"),
		WithBlocks(2, 3, 3, 2, 2),
		WithDelimiters(" (", ") ", "-", "-"),
	},
	Date: {
		withFlag(KeyDate, func(c *Config) *bool { return &c.Date }, true),
		WithDelimiter("-"),
		WithDatePattern("d", "m", "Y"),
	},
	Time: {
		withFlag(KeyTime, func(c *Config) *bool { return &c.Time }, true),
		WithTimePattern("h", "m"),
	},
	Number: {
		withFlag(KeyNumeral, func(c *Config) *bool { return &c.Numeral }, true),
		WithDelimiter(" "),
		WithGroupStyle(GroupThousand),
	},
}

// Defaults returns a fresh copy of the default options of mode. An unknown
// mode yields an empty Config.
func Defaults(mode Mode) Config {
	var c Config
	for _, opt := range modeDefaults[mode] {
		opt(&c)
	}
	return c
}

// Resolve merges the defaults of mode with opts. Later options win key by
// key; keys not overridden keep their default.
func Resolve(mode Mode, opts ...Option) Config {
	c := Defaults(mode)
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Has reports whether key k is present in c.
func (c Config) Has(k Key) bool {
	if c.set.has(k) {
		return true
	}
	switch v := c.value(k).(type) {
	case bool:
		return v
	case string:
		return v != ""
	case GroupStyle:
		return v != ""
	case []int:
		return v != nil
	case []string:
		return v != nil
	}
	return false
}

// Keys returns the present keys in serialization order.
func (c Config) Keys() []Key {
	keys := make([]Key, 0, len(keyOrder))
	for _, k := range keyOrder {
		if c.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c Config) value(k Key) any {
	switch k {
	case KeyCreditCard:
		return c.CreditCard
	case KeyDate:
		return c.Date
	case KeyTime:
		return c.Time
	case KeyNumeral:
		return c.Numeral
	case KeyNumericOnly:
		return c.NumericOnly
	case KeyPrefix:
		return c.Prefix
	case KeyBlocks:
		return c.Blocks
	case KeyDelimiter:
		return c.Delimiter
	case KeyDelimiters:
		return c.Delimiters
	case KeyDatePattern:
		return c.DatePattern
	case KeyTimePattern:
		return c.TimePattern
	case KeyGroupStyle:
		return c.GroupStyle
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Blocks = slices.Clone(c.Blocks)
	out.Delimiters = slices.Clone(c.Delimiters)
	out.DatePattern = slices.Clone(c.DatePattern)
	out.TimePattern = slices.Clone(c.TimePattern)
	return out
}

// MarshalJSON encodes the present keys as a JSON object in a fixed order.
// Present slices encode as arrays, never null.
func (c Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		v := c.value(k)
		switch s := v.(type) {
		case []int:
			if s == nil {
				v = []int{}
			}
		case []string:
			if s == nil {
				v = []string{}
			}
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
