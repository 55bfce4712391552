package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, body, location string) *Document {
	t.Helper()
	doc, err := ParseString(body, location)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func byID(t *testing.T, doc *Document, tag string, idx int) *html.Node {
	t.Helper()
	nodes := doc.ElementsByTag(tag)
	if len(nodes) <= idx {
		t.Fatalf("expected at least %d <%s> elements, got %d", idx+1, tag, len(nodes))
	}
	return nodes[idx]
}

func TestLocate(t *testing.T) {
	body := `<html><body>
	  <div class="layout main extra">
	    <section id="login">
	      <form class="auth"><input type="password" class="pw field"></form>
	    </section>
	  </div>
	  <ul><li><span><em><b><i>deep</i></b></em></span></li></ul>
	</body></html>`
	doc := mustParse(t, body, "https://example.com/")

	tests := []struct {
		name string
		node *html.Node
		want string
	}{
		{
			name: "stops at id",
			node: byID(t, doc, "input", 0),
			want: "section#login > form.auth > input.pw.field",
		},
		{
			name: "element with id",
			node: byID(t, doc, "section", 0),
			want: "section#login",
		},
		{
			name: "first two classes only",
			node: byID(t, doc, "div", 0),
			want: "html > body > div.layout.main",
		},
		{
			name: "bounded depth",
			node: byID(t, doc, "i", 0),
			want: "li > span > em > b > i",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(tt.node); got != tt.want {
				t.Fatalf("Locate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocate_DepthLimit(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<div>", 20) + "<p>x</p>" + strings.Repeat("</div>", 20) + "</body></html>"
	doc := mustParse(t, body, "https://example.com/")
	got := Locate(byID(t, doc, "p", 0))
	if n := len(strings.Split(got, " > ")); n != MaxLocatorDepth {
		t.Fatalf("expected %d segments, got %d (%q)", MaxLocatorDepth, n, got)
	}
}

func TestLocate_NonElement(t *testing.T) {
	doc := mustParse(t, "<p>text</p>", "https://example.com/")
	if got := Locate(nil); got != "" {
		t.Fatalf("expected empty locator for nil, got %q", got)
	}
	if got := Locate(doc.Root()); got != "" {
		t.Fatalf("expected empty locator for document node, got %q", got)
	}
	p := byID(t, doc, "p", 0)
	if got := Locate(p.FirstChild); got != "" {
		t.Fatalf("expected empty locator for text node, got %q", got)
	}
}

func TestLocate_Deterministic(t *testing.T) {
	doc := mustParse(t, `<div class="a b"><a href="/x" class="link">x</a></div>`, "https://example.com/")
	a := byID(t, doc, "a", 0)
	first := Locate(a)
	if second := Locate(a); first != second {
		t.Fatalf("locator not stable: %q vs %q", first, second)
	}
}

func TestDocumentBase(t *testing.T) {
	doc := mustParse(t, `<head><base href="https://cdn.example.net/assets/"></head>`, "https://example.com/page")
	u, err := doc.Resolve("app.js")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := u.String(); got != "https://cdn.example.net/assets/app.js" {
		t.Fatalf("unexpected resolution %s", got)
	}

	plain := mustParse(t, `<p>no base</p>`, "https://example.com/dir/page")
	u, err = plain.Resolve("../img.png")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := u.String(); got != "https://example.com/img.png" {
		t.Fatalf("unexpected resolution %s", got)
	}
}

func TestParse_RelativeLocation(t *testing.T) {
	if _, err := ParseString("<p></p>", "/relative"); err == nil {
		t.Fatal("expected error for relative location")
	}
}

func TestAttrHelpers(t *testing.T) {
	doc := mustParse(t, `<input autocomplete="" name="q">`, "https://example.com/")
	in := byID(t, doc, "input", 0)
	if !HasAttr(in, "autocomplete") {
		t.Fatal("expected autocomplete attribute to be present")
	}
	if Attr(in, "autocomplete") != "" {
		t.Fatal("expected empty autocomplete value")
	}
	if HasAttr(in, "type") {
		t.Fatal("did not expect type attribute")
	}
}
