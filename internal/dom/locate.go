package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// MaxLocatorDepth bounds how many ancestors a locator walks through.
const MaxLocatorDepth = 5

// Locate renders a short structural path for an element, e.g.
// "div.content > form#login > input.pw". The walk stops at the first element with an
// id or after MaxLocatorDepth segments. Non-element nodes yield "".
func Locate(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	parts := make([]string, 0, MaxLocatorDepth)
	for el := n; el != nil && len(parts) < MaxLocatorDepth; el = parentElement(el) {
		part := strings.ToLower(el.Data)
		if id := Attr(el, "id"); id != "" {
			parts = append(parts, part+"#"+id)
			break
		}
		if classes := strings.Fields(Attr(el, "class")); len(classes) > 0 {
			if len(classes) > 2 {
				classes = classes[:2]
			}
			part += "." + strings.Join(classes, ".")
		}
		parts = append(parts, part)
	}

	// parts were collected leaf first
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
