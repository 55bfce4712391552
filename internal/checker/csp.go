package checker

import (
	"slices"
	"strings"
)

// CSP is a parsed Content-Security-Policy: lower-cased directive name to its
// source values. Values keep their original case.
type CSP map[string][]string

// ParseCSP splits a policy on ';' and each directive on whitespace. When a directive
// repeats, the last occurrence wins.
func ParseCSP(value string) CSP {
	csp := make(CSP)
	for _, part := range strings.Split(value, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		csp[strings.ToLower(fields[0])] = slices.Clone(fields[1:])
	}
	return csp
}

// Has reports whether the directive is declared, even without values.
func (c CSP) Has(directive string) bool {
	_, ok := c[directive]
	return ok
}

// ScriptSources returns script-src when declared, otherwise default-src.
func (c CSP) ScriptSources() []string {
	if values, ok := c["script-src"]; ok {
		return values
	}
	return c["default-src"]
}

// AllowsUnsafeScript reports whether the effective script sources contain
// 'unsafe-inline' or 'unsafe-eval'.
func (c CSP) AllowsUnsafeScript() bool {
	joined := strings.Join(c.ScriptSources(), " ")
	return strings.Contains(joined, "'unsafe-inline'") || strings.Contains(joined, "'unsafe-eval'")
}

// mentionsFrameAncestors is a loose case-insensitive substring test on the raw
// header; it does not require frame-ancestors to be a well-formed directive.
func mentionsFrameAncestors(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "frame-ancestors")
}
