package server

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/mask"
)

// rulesFromQuery builds the rules of a mask request. Without selector and
// mode the built-in data-format rules are used.
func rulesFromQuery(q url.Values) ([]mask.Rule, error) {
	selector, modeName := q.Get("selector"), q.Get("mode")
	if selector == "" && modeName == "" {
		return mask.DefaultRules(), nil
	}
	if selector == "" {
		return nil, apperrors.ValidationError{Field: "selector", Message: "required with mode"}
	}
	mode, err := mask.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	overrides, err := parseOverrides(q)
	if err != nil {
		return nil, err
	}
	return []mask.Rule{{Selector: selector, Mode: mode, Options: overrides}}, nil
}

// parseOverrides reads mask overrides from query parameters named after the
// config keys. A present parameter overrides its key even when empty. List
// keys accept repeated parameters; blocks and patterns also accept a
// comma-separated value.
func parseOverrides(q url.Values) (mask.Overrides, error) {
	var o mask.Overrides
	if q.Has("numericOnly") {
		v, err := strconv.ParseBool(q.Get("numericOnly"))
		if err != nil {
			return o, apperrors.ValidationError{Field: "numericOnly", Message: "must be a boolean"}
		}
		o.NumericOnly = &v
	}
	if q.Has("prefix") {
		v := q.Get("prefix")
		o.Prefix = &v
	}
	if q.Has("blocks") {
		blocks := []int{}
		for _, s := range splitList(q["blocks"]) {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return o, apperrors.ValidationError{Field: "blocks", Message: "must be non-negative integers"}
			}
			blocks = append(blocks, n)
		}
		o.Blocks = blocks
	}
	if q.Has("delimiter") {
		v := q.Get("delimiter")
		o.Delimiter = &v
	}
	if q.Has("delimiters") {
		o.Delimiters = append([]string{}, q["delimiters"]...)
	}
	if q.Has("datePattern") {
		o.DatePattern = splitList(q["datePattern"])
	}
	if q.Has("timePattern") {
		o.TimePattern = splitList(q["timePattern"])
	}
	if q.Has("numeralThousandsGroupStyle") {
		g, err := mask.ParseGroupStyle(q.Get("numeralThousandsGroupStyle"))
		if err != nil {
			return o, err
		}
		o.GroupStyle = &g
	}
	return o, nil
}

// splitList flattens repeated and comma-separated values, dropping blanks.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
