// Package dom wraps golang.org/x/net/html with the small set of queries the page
// collector needs: element walks, attribute lookups, URL resolution against the
// document base, and structural evidence locators.
package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed page together with the location it was loaded from.
type Document struct {
	root     *html.Node
	location *url.URL
	base     *url.URL
}

// Parse reads an HTML document. location must be the absolute URL the page was
// loaded from; it provides the protocol and, absent a <base href>, the resolution base.
func Parse(r io.Reader, location string) (*Document, error) {
	loc, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", location, err)
	}
	if !loc.IsAbs() {
		return nil, fmt.Errorf("location %q is not absolute", location)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return NewDocument(root, loc), nil
}

// ParseString is Parse over an in-memory document.
func ParseString(body, location string) (*Document, error) {
	return Parse(strings.NewReader(body), location)
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node, location *url.URL) *Document {
	doc := &Document{root: root, location: location, base: location}
	if baseEl := doc.First(func(n *html.Node) bool { return n.Data == "base" && HasAttr(n, "href") }); baseEl != nil {
		if href := strings.TrimSpace(Attr(baseEl, "href")); href != "" {
			if resolved, err := location.Parse(href); err == nil {
				doc.base = resolved
			}
		}
	}
	return doc
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Location returns a copy of the page URL.
func (d *Document) Location() *url.URL {
	u := *d.location
	return &u
}

// Base returns a copy of the URL relative references resolve against.
func (d *Document) Base() *url.URL {
	u := *d.base
	return &u
}

// IsHTTPS reports whether the page itself was loaded over TLS.
func (d *Document) IsHTTPS() bool {
	return d.location.Scheme == "https"
}

// Resolve turns an attribute value into an absolute URL against the document base.
func (d *Document) Resolve(ref string) (*url.URL, error) {
	return d.base.Parse(strings.TrimSpace(ref))
}

// Elements returns every element matching pred in document order.
func (d *Document) Elements(pred func(*html.Node) bool) []*html.Node {
	return Descendants(d.root, pred)
}

// ElementsByTag returns every element with one of the given tag names in document order.
func (d *Document) ElementsByTag(tags ...string) []*html.Node {
	return d.Elements(func(n *html.Node) bool {
		for _, tag := range tags {
			if n.Data == tag {
				return true
			}
		}
		return false
	})
}

// First returns the first element matching pred, or nil.
func (d *Document) First(pred func(*html.Node) bool) *html.Node {
	return FirstDescendant(d.root, pred)
}

// Descendants walks the subtree below n (excluding n) and collects matching elements.
func Descendants(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FirstDescendant returns the first element below n matching pred.
func FirstDescendant(n *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits descendants in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !visit(c) {
			return false
		}
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// Attr returns the value of an attribute, or "" when it is absent.
func Attr(n *html.Node, name string) string {
	v, _ := LookupAttr(n, name)
	return v
}

// LookupAttr returns the attribute value and whether the attribute exists at all.
func LookupAttr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present, even with an empty value.
func HasAttr(n *html.Node, name string) bool {
	_, ok := LookupAttr(n, name)
	return ok
}

// Text concatenates the text content of n and its descendants.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
