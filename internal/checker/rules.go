package checker

import (
	"github.com/khanhnv2901/seca-pagescan/internal/compliance"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
)

// Options tunes rule evaluation.
type Options struct {
	// Extended enables rules beyond the base header and content tables.
	Extended bool
}

// Scope names the evaluator a rule belongs to.
type Scope string

const (
	ScopeHeader  Scope = "header"
	ScopeContent Scope = "content"
)

// Rule describes one entry of a rule table.
type Rule struct {
	ID             string                 `json:"id" yaml:"id"`
	Title          string                 `json:"title" yaml:"title"`
	Severity       finding.Severity       `json:"severity" yaml:"severity"`
	Classification finding.Classification `json:"classification" yaml:"classification"`
	Remediation    string                 `json:"remediation" yaml:"remediation"`
	Scope          Scope                  `json:"scope" yaml:"scope"`
	Extended       bool                   `json:"extended" yaml:"extended"`
}

// Finding instantiates the rule with occurrence evidence.
func (r Rule) Finding(evidence string) finding.Finding {
	return finding.Finding{
		ID:             r.ID,
		Title:          r.Title,
		Severity:       r.Severity,
		Classification: r.Classification,
		Evidence:       evidence,
		Remediation:    r.Remediation,
	}
}

func classify(owasp, cwe string) finding.Classification {
	return finding.Classification{OWASP: compliance.Label(owasp), CWE: cwe}
}

func enabled(r Rule, opts Options) bool {
	return !r.Extended || opts.Extended
}

// Catalog lists every rule of both tables, header rules first.
func Catalog() []Rule {
	out := make([]Rule, 0, len(headerRules)+len(contentRules))
	for _, r := range headerRules {
		out = append(out, r.Rule)
	}
	for _, r := range contentRules {
		out = append(out, r.Rule)
	}
	return out
}

// Lookup finds a rule by ID.
func Lookup(id string) (Rule, bool) {
	for _, r := range Catalog() {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
