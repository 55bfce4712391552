package collector

import (
	"regexp"
	"strings"

	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"golang.org/x/net/html"
)

// subresourceGroups lists the URL-bearing elements checked for mixed content,
// in the order they are reported.
var subresourceGroups = []struct {
	tags  []string
	attr  string
	match func(*html.Node) bool
}{
	{tags: []string{"script"}, attr: "src"},
	{tags: []string{"img"}, attr: "src"},
	{tags: []string{"iframe"}, attr: "src"},
	{tags: []string{"link"}, attr: "href", match: isStylesheetLink},
	{tags: []string{"audio", "video", "source"}, attr: "src"},
}

// Token-like parameter names that should never travel in a URL.
var urlSecretPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{`access_token=`, regexp.MustCompile(`(?i)access_token=`)},
	{`id_token=`, regexp.MustCompile(`(?i)id_token=`)},
	{`\btoken=`, regexp.MustCompile(`(?i)\btoken=`)},
	{`\bjwt=`, regexp.MustCompile(`(?i)\bjwt=`)},
	{`\bapikey=`, regexp.MustCompile(`(?i)\bapikey=`)},
	{`\bapi_key=`, regexp.MustCompile(`(?i)\bapi_key=`)},
	{`\bsession=`, regexp.MustCompile(`(?i)\bsession=`)},
}

// Literal substrings; matching is intentionally textual.
var (
	domSinks = []string{
		"innerHTML",
		"outerHTML",
		"insertAdjacentHTML",
		"document.write",
		"eval(",
		"new Function",
	}
	domSources = []string{
		"location",
		"location.href",
		"location.search",
		"location.hash",
		"document.cookie",
		"localStorage",
		"sessionStorage",
		"postMessage",
		"event.data",
	}
)

var inlineHandlerAttrs = []string{
	"onclick",
	"onload",
	"onerror",
	"onmouseover",
	"onfocus",
	"oninput",
	"onsubmit",
}

func scanMixedContent(doc *dom.Document) []signal.Signal {
	if !doc.IsHTTPS() {
		return nil
	}

	var out []signal.Signal
	for _, group := range subresourceGroups {
		for _, el := range doc.ElementsByTag(group.tags...) {
			if group.match != nil && !group.match(el) {
				continue
			}
			raw := dom.Attr(el, group.attr)
			if raw == "" {
				continue
			}
			u, err := doc.Resolve(raw)
			if err != nil {
				continue
			}
			if u.Scheme != "http" {
				continue
			}
			out = append(out, signal.Signal{
				Kind:     signal.KindMixedContent,
				Element:  el.Data,
				Attr:     group.attr,
				URL:      u.String(),
				Evidence: dom.Locate(el),
			})
		}
	}
	return out
}

// isStylesheetLink matches rel="stylesheet" exactly; alternate stylesheets are
// not loaded up front.
func isStylesheetLink(n *html.Node) bool {
	return strings.EqualFold(dom.Attr(n, "rel"), "stylesheet")
}

func scanForms(doc *dom.Document) []signal.Signal {
	var out []signal.Signal
	for _, form := range doc.ElementsByTag("form") {
		evidence := dom.Locate(form)

		action := strings.TrimSpace(dom.Attr(form, "action"))
		if action == "" {
			action = doc.Location().String()
		}
		method := strings.ToLower(strings.TrimSpace(dom.Attr(form, "method")))
		if method == "" {
			method = "get"
		}

		if u, err := doc.Resolve(action); err == nil && doc.IsHTTPS() && u.Scheme == "http" {
			out = append(out, signal.Signal{
				Kind:     signal.KindFormPostsToHTTP,
				URL:      u.String(),
				Method:   method,
				Evidence: evidence,
			})
		}

		password := dom.FirstDescendant(form, isPasswordInput)
		if password == nil {
			continue
		}
		if method == "get" {
			out = append(out, signal.Signal{
				Kind:     signal.KindPasswordViaGET,
				Evidence: evidence,
			})
		}
		if strings.TrimSpace(dom.Attr(password, "autocomplete")) == "" {
			out = append(out, signal.Signal{
				Kind:     signal.KindPasswordAutocomplete,
				Evidence: dom.Locate(password),
			})
		}
	}
	return out
}

func isPasswordInput(n *html.Node) bool {
	return n.Data == "input" && strings.EqualFold(strings.TrimSpace(dom.Attr(n, "type")), "password")
}

func scanURLLeakage(doc *dom.Document) []signal.Signal {
	loc := doc.Location()

	var search, hash string
	if loc.RawQuery != "" {
		search = "?" + loc.RawQuery
	}
	if loc.Fragment != "" {
		hash = "#" + loc.EscapedFragment()
	}
	haystack := search + "&" + hash

	for _, p := range urlSecretPatterns {
		if p.re.MatchString(haystack) {
			return []signal.Signal{{
				Kind:     signal.KindTokenInURL,
				Pattern:  p.name,
				Evidence: "URL contains sensitive-looking parameter matching " + p.name,
			}}
		}
	}
	return nil
}

// scanInlineScripts only looks for a taint source once a sink was found in the same
// script body. Scripts with a source but no sink are not reported.
func scanInlineScripts(doc *dom.Document) []signal.Signal {
	var out []signal.Signal
	for _, script := range doc.ElementsByTag("script") {
		if dom.HasAttr(script, "src") {
			continue
		}
		body := dom.Text(script)
		sink := firstContained(body, domSinks)
		if sink == "" {
			continue
		}
		source := firstContained(body, domSources)
		if source == "" {
			continue
		}
		out = append(out, signal.Signal{
			Kind:     signal.KindDOMXSSInline,
			Source:   source,
			Sink:     sink,
			Evidence: dom.Locate(script),
		})
	}
	return out
}

func firstContained(s string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n
		}
	}
	return ""
}

func scanTabnabbing(doc *dom.Document) []signal.Signal {
	var out []signal.Signal
	for _, a := range doc.ElementsByTag("a") {
		if !strings.EqualFold(dom.Attr(a, "target"), "_blank") {
			continue
		}
		rel := strings.ToLower(dom.Attr(a, "rel"))
		if strings.Contains(rel, "noopener") && strings.Contains(rel, "noreferrer") {
			continue
		}
		href := dom.Attr(a, "href")
		if u, err := doc.Resolve(href); err == nil && href != "" {
			href = u.String()
		}
		out = append(out, signal.Signal{
			Kind:     signal.KindTabnabbing,
			Href:     href,
			Evidence: dom.Locate(a),
		})
	}
	return out
}

func scanInlineHandlers(doc *dom.Document) []signal.Signal {
	var out []signal.Signal
	for _, el := range doc.Elements(func(*html.Node) bool { return true }) {
		for _, attr := range inlineHandlerAttrs {
			if dom.HasAttr(el, attr) {
				out = append(out, signal.Signal{
					Kind:     signal.KindInlineEventHandler,
					Attr:     attr,
					Evidence: dom.Locate(el),
				})
				break
			}
		}
	}
	return out
}
