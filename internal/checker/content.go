package checker

import (
	"fmt"

	"github.com/khanhnv2901/seca-pagescan/internal/compliance"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
)

// contentRule fires when at least one signal of its kind was collected. The
// evidence comes from the first such signal unless the rule fixes it.
type contentRule struct {
	Rule
	kind     signal.Kind
	evidence func(s signal.Signal) string
}

var contentRules = []contentRule{
	{
		Rule: Rule{
			ID:             "PW_AUTOCOMPLETE",
			Title:          "Password input missing autocomplete",
			Severity:       finding.SeverityInfo,
			Classification: classify(compliance.A05, compliance.CWE16),
			Remediation:    "Add autocomplete='current-password' or 'new-password'.",
		},
		kind: signal.KindPasswordAutocomplete,
		evidence: func(signal.Signal) string {
			return "Password input has no autocomplete attribute."
		},
	},

	// Extended content rules.
	{
		Rule: Rule{
			ID:             "MIXED_CONTENT",
			Title:          "HTTPS page loads subresources over HTTP",
			Severity:       finding.SeverityHigh,
			Classification: classify(compliance.A02, compliance.CWE319),
			Remediation:    "Load every script, style, frame and media resource over HTTPS.",
			Extended:       true,
		},
		kind: signal.KindMixedContent,
		evidence: func(s signal.Signal) string {
			return fmt.Sprintf("<%s %s=%q> at %s", s.Element, s.Attr, s.URL, s.Evidence)
		},
	},
	{
		Rule: Rule{
			ID:             "FORM_HTTP_ACTION",
			Title:          "Form submits over HTTP from an HTTPS page",
			Severity:       finding.SeverityHigh,
			Classification: classify(compliance.A02, compliance.CWE319),
			Remediation:    "Point form actions at HTTPS endpoints.",
			Extended:       true,
		},
		kind: signal.KindFormPostsToHTTP,
		evidence: func(s signal.Signal) string {
			return fmt.Sprintf("%s %s at %s", s.Method, s.URL, s.Evidence)
		},
	},
	{
		Rule: Rule{
			ID:             "PASSWORD_VIA_GET",
			Title:          "Password form submitted with GET",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A04, compliance.CWE598),
			Remediation:    "Submit credentials with method=\"post\".",
			Extended:       true,
		},
		kind: signal.KindPasswordViaGET,
	},
	{
		Rule: Rule{
			ID:             "TOKEN_IN_URL",
			Title:          "Sensitive token in page URL",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A04, compliance.CWE598),
			Remediation:    "Move tokens out of the query string and fragment; use headers or POST bodies.",
			Extended:       true,
		},
		kind: signal.KindTokenInURL,
	},
	{
		Rule: Rule{
			ID:             "DOM_XSS_INLINE",
			Title:          "Inline script passes a DOM source to an HTML sink",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A03, compliance.CWE79),
			Remediation:    "Avoid HTML sinks for untrusted data; use textContent or Trusted Types.",
			Extended:       true,
		},
		kind: signal.KindDOMXSSInline,
		evidence: func(s signal.Signal) string {
			return fmt.Sprintf("%s -> %s at %s", s.Source, s.Sink, s.Evidence)
		},
	},
	{
		Rule: Rule{
			ID:             "TABNABBING",
			Title:          "target=_blank link without noopener noreferrer",
			Severity:       finding.SeverityLow,
			Classification: classify(compliance.A04, compliance.CWE1022),
			Remediation:    "Add rel=\"noopener noreferrer\" to links opening a new tab.",
			Extended:       true,
		},
		kind: signal.KindTabnabbing,
		evidence: func(s signal.Signal) string {
			if s.Href == "" {
				return s.Evidence
			}
			return s.Href + " at " + s.Evidence
		},
	},
	{
		Rule: Rule{
			ID:             "INLINE_HANDLER",
			Title:          "Inline event handler attributes",
			Severity:       finding.SeverityInfo,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Move handlers into scripts with addEventListener so CSP can forbid inline code.",
			Extended:       true,
		},
		kind: signal.KindInlineEventHandler,
		evidence: func(s signal.Signal) string {
			return s.Attr + " at " + s.Evidence
		},
	},
}

func init() {
	for i := range contentRules {
		contentRules[i].Scope = ScopeContent
	}
}

// EvaluateSignals runs the content rule table over collected signals.
func EvaluateSignals(signals []signal.Signal, opts Options) []finding.Finding {
	var out []finding.Finding
	for _, r := range contentRules {
		if !enabled(r.Rule, opts) {
			continue
		}
		s := signal.First(signals, r.kind)
		if s == nil {
			continue
		}
		evidence := s.Evidence
		if r.evidence != nil {
			evidence = r.evidence(*s)
		}
		out = append(out, r.Finding(evidence))
	}
	return out
}
