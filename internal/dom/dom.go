package dom

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
)

// Element is a node that a mask can be attached to.
type Element interface {
	// TagName returns the lower-case tag name, e.g. "input".
	TagName() string
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// SetAttr adds or replaces the named attribute.
	SetAttr(name, value string)
	// RemoveAttr deletes the named attribute if present.
	RemoveAttr(name string)
}

// Document resolves selectors to elements.
type Document interface {
	// QuerySelectorAll returns all elements matching selector in document
	// order. An unparsable selector returns an apperrors.ValidationError.
	QuerySelectorAll(selector string) ([]Element, error)
}

// HTMLDocument is a parsed HTML document or fragment.
type HTMLDocument struct {
	root     *html.Node
	fragment bool
}

var _ Document = (*HTMLDocument)(nil)

// fullDocument detects content that carries its own document structure.
var fullDocument = regexp.MustCompile(`(?i)^\s*(<!--.*?-->\s*)*<(!doctype|html)[\s>]`)

// Parse parses a complete HTML document.
func Parse(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to parse HTML document")
	}
	return &HTMLDocument{root: root}, nil
}

// ParseFragment parses HTML in body context. Rendering a fragment emits only
// the parsed nodes, without the implied html/head/body wrapper.
func ParseFragment(r io.Reader) (*HTMLDocument, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to parse HTML fragment")
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &HTMLDocument{root: root, fragment: true}, nil
}

// Load reads r fully and parses it as a document when it starts with a
// doctype or an html tag, and as a fragment otherwise.
func Load(r io.Reader) (*HTMLDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to read HTML")
	}
	if fullDocument.Match(data) {
		return Parse(bytes.NewReader(data))
	}
	return ParseFragment(bytes.NewReader(data))
}

// IsFragment reports whether the document was parsed as a fragment.
func (d *HTMLDocument) IsFragment() bool { return d.fragment }

// QuerySelectorAll implements Document. Comma-separated selector groups are
// supported; each matching element appears once.
func (d *HTMLDocument) QuerySelectorAll(selector string) ([]Element, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, apperrors.ValidationError{Field: "selector", Message: "must not be empty"}
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "selector", Message: err.Error()}
	}
	nodes := cascadia.QueryAll(d.root, sel)
	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &HTMLElement{node: n})
	}
	return elements, nil
}

// Render writes the document as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return apperrors.WrapError(err, "failed to render HTML")
		}
	}
	return nil
}

// String renders the document to a string. Render errors yield an empty string.
func (d *HTMLDocument) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// HTMLElement is an Element backed by an html.Node.
type HTMLElement struct {
	node *html.Node
}

var _ Element = (*HTMLElement)(nil)

// TagName implements Element.
func (e *HTMLElement) TagName() string { return e.node.Data }

// Attr implements Element.
func (e *HTMLElement) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr implements Element.
func (e *HTMLElement) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr implements Element.
func (e *HTMLElement) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Describe returns a short CSS-like label for el, used in logs:
// the tag name followed by #id or [name=...] when present.
func Describe(el Element) string {
	label := el.TagName()
	if id, ok := el.Attr("id"); ok && id != "" {
		return label + "#" + id
	}
	if name, ok := el.Attr("name"); ok && name != "" {
		return fmt.Sprintf("%s[name=%q]", label, name)
	}
	return label
}
