package mask

import (
	"strings"

	"github.com/agbru/fieldfmt/internal/dom"
)

// nonTextInputTypes are input types that do not hold free text. Browsers
// treat a missing or unknown type as text, so everything else is eligible.
var nonTextInputTypes = map[string]bool{
	"button":         true,
	"checkbox":       true,
	"color":          true,
	"date":           true,
	"datetime-local": true,
	"file":           true,
	"hidden":         true,
	"image":          true,
	"month":          true,
	"number":         true,
	"radio":          true,
	"range":          true,
	"reset":          true,
	"submit":         true,
	"time":           true,
	"week":           true,
}

// IsTextInput reports whether el is an <input> that accepts typed text and
// can therefore carry a mask. Masks format single-line values, so <textarea>
// and every other tag is not eligible.
func IsTextInput(el dom.Element) bool {
	if !strings.EqualFold(el.TagName(), "input") {
		return false
	}
	typ, _ := el.Attr("type")
	return !nonTextInputTypes[strings.ToLower(strings.TrimSpace(typ))]
}

// filter returns the items for which keep is true, preserving order.
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
