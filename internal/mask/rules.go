package mask

import (
	"encoding/json"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
)

// Overrides is the declarative form of a list of Options, as read from a
// rules file or a request. A nil field leaves the default in place; a set
// field, even an empty string or an empty list, replaces it.
type Overrides struct {
	NumericOnly *bool       `yaml:"numericOnly,omitempty" json:"numericOnly,omitempty"`
	Prefix      *string     `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Blocks      []int       `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Delimiter   *string     `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Delimiters  []string    `yaml:"delimiters,omitempty" json:"delimiters,omitempty"`
	DatePattern []string    `yaml:"datePattern,omitempty" json:"datePattern,omitempty"`
	TimePattern []string    `yaml:"timePattern,omitempty" json:"timePattern,omitempty"`
	GroupStyle  *GroupStyle `yaml:"numeralThousandsGroupStyle,omitempty" json:"numeralThousandsGroupStyle,omitempty"`
}

// fields returns the set fields of o keyed by their option name. Unset fields
// are left out and set lists are kept even when empty.
func (o Overrides) fields() map[string]any {
	m := make(map[string]any)
	if o.NumericOnly != nil {
		m["numericOnly"] = *o.NumericOnly
	}
	if o.Prefix != nil {
		m["prefix"] = *o.Prefix
	}
	if o.Blocks != nil {
		m["blocks"] = o.Blocks
	}
	if o.Delimiter != nil {
		m["delimiter"] = *o.Delimiter
	}
	if o.Delimiters != nil {
		m["delimiters"] = o.Delimiters
	}
	if o.DatePattern != nil {
		m["datePattern"] = o.DatePattern
	}
	if o.TimePattern != nil {
		m["timePattern"] = o.TimePattern
	}
	if o.GroupStyle != nil {
		m["numeralThousandsGroupStyle"] = string(*o.GroupStyle)
	}
	return m
}

// MarshalJSON encodes the set fields of o, keeping empty lists.
func (o Overrides) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.fields())
}

// MarshalYAML encodes the set fields of o, keeping empty lists.
func (o Overrides) MarshalYAML() (any, error) {
	return o.fields(), nil
}

// Options converts o into Options, in Config key order.
func (o Overrides) Options() []Option {
	var opts []Option
	if o.NumericOnly != nil {
		opts = append(opts, WithNumericOnly(*o.NumericOnly))
	}
	if o.Prefix != nil {
		opts = append(opts, WithPrefix(*o.Prefix))
	}
	if o.Blocks != nil {
		opts = append(opts, WithBlocks(o.Blocks...))
	}
	if o.Delimiter != nil {
		opts = append(opts, WithDelimiter(*o.Delimiter))
	}
	if o.Delimiters != nil {
		opts = append(opts, WithDelimiters(o.Delimiters...))
	}
	if o.DatePattern != nil {
		opts = append(opts, WithDatePattern(o.DatePattern...))
	}
	if o.TimePattern != nil {
		opts = append(opts, WithTimePattern(o.TimePattern...))
	}
	if o.GroupStyle != nil {
		opts = append(opts, WithGroupStyle(*o.GroupStyle))
	}
	return opts
}

// Rule binds a selector to a mode and its overrides.
type Rule struct {
	Selector string    `yaml:"selector" json:"selector"`
	Mode     Mode      `yaml:"mode" json:"mode"`
	Options  Overrides `yaml:"options" json:"options"`
}

// RuleSet is the top-level document of a rules file:
//
//	rules:
//	  - selector: "[data-format-phone]"
//	    mode: phone
//	    options:
//	      prefix: "+1"
type RuleSet struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// DefaultRules returns the standard data-attribute wiring: one rule per mode
// on [data-format-<mode>] with the mode defaults.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(Modes()))
	for _, m := range Modes() {
		rules = append(rules, Rule{Selector: "[data-format-" + m.String() + "]", Mode: m})
	}
	return rules
}

// LoadRules decodes a YAML rules file. Unknown keys, unknown modes and rules
// without a selector are configuration errors.
func LoadRules(r io.Reader) ([]Rule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var set RuleSet
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewConfigError("rules file is empty")
		}
		var configErr apperrors.ConfigError
		if errors.As(err, &configErr) {
			return nil, configErr
		}
		return nil, apperrors.NewConfigError("invalid rules file: %v", err)
	}
	for i, rule := range set.Rules {
		if rule.Selector == "" {
			return nil, apperrors.NewConfigError("rule %d: selector is required", i+1)
		}
		if !rule.Mode.Valid() {
			return nil, apperrors.NewConfigError("rule %d: mode is required", i+1)
		}
	}
	return set.Rules, nil
}
