package checker

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/khanhnv2901/seca-pagescan/internal/compliance"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
)

// headerInput is the main frame as the header rules see it.
type headerInput struct {
	url     string
	scheme  string // "" when the URL does not parse
	headers map[string]string
	csp     string
}

// get treats empty values as absent.
func (in *headerInput) get(name string) string {
	return in.headers[name]
}

type headerRule struct {
	Rule
	check func(in *headerInput) (evidence string, fired bool)
}

var headerRules = []headerRule{
	{
		Rule: Rule{
			ID:             "HTTP_IN_USE",
			Title:          "Site served over HTTP (no transport encryption)",
			Severity:       finding.SeverityHigh,
			Classification: classify(compliance.A02, compliance.CWE319),
			Remediation:    "Serve the site over HTTPS and redirect HTTP to HTTPS.",
		},
		check: func(in *headerInput) (string, bool) {
			return "Main document URL uses HTTP: " + in.url, in.scheme == "http"
		},
	},
	{
		Rule: Rule{
			ID:             "HSTS_MISSING",
			Title:          "HSTS missing",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A05, compliance.CWE319),
			Remediation:    "Add Strict-Transport-Security header.",
		},
		check: func(in *headerInput) (string, bool) {
			return "Strict-Transport-Security header not present.",
				in.scheme == "https" && in.get("strict-transport-security") == ""
		},
	},
	{
		Rule: Rule{
			ID:             "CSP_MISSING",
			Title:          "Content-Security-Policy missing",
			Severity:       finding.SeverityHigh,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Define a restrictive Content-Security-Policy.",
		},
		check: func(in *headerInput) (string, bool) {
			return "No CSP header present.", in.csp == ""
		},
	},
	{
		Rule: Rule{
			ID:             "CSP_UNSAFE",
			Title:          "CSP allows unsafe-inline or unsafe-eval",
			Severity:       finding.SeverityHigh,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Remove unsafe-inline / unsafe-eval. Use nonces or hashes.",
		},
		check: func(in *headerInput) (string, bool) {
			if in.csp == "" {
				return "", false
			}
			return in.csp, ParseCSP(in.csp).AllowsUnsafeScript()
		},
	},
	{
		Rule: Rule{
			ID:             "CLICKJACKING_RISK",
			Title:          "No clickjacking protection",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A01, compliance.CWE1021),
			Remediation:    "Add frame-ancestors 'none' or X-Frame-Options: DENY.",
		},
		check: func(in *headerInput) (string, bool) {
			return "Missing X-Frame-Options and frame-ancestors.",
				in.get("x-frame-options") == "" && !mentionsFrameAncestors(in.csp)
		},
	},
	{
		Rule: Rule{
			ID:             "NOSNIFF_MISSING",
			Title:          "X-Content-Type-Options missing",
			Severity:       finding.SeverityLow,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Set X-Content-Type-Options: nosniff.",
		},
		check: func(in *headerInput) (string, bool) {
			return "x-content-type-options missing or incorrect.",
				strings.ToLower(in.get("x-content-type-options")) != "nosniff"
		},
	},
	{
		Rule: Rule{
			ID:             "REFERRER_POLICY_MISSING",
			Title:          "Referrer-Policy missing",
			Severity:       finding.SeverityLow,
			Classification: classify(compliance.A05, compliance.CWE200),
			Remediation:    "Set Referrer-Policy: strict-origin-when-cross-origin.",
		},
		check: func(in *headerInput) (string, bool) {
			return "No Referrer-Policy header present.", in.get("referrer-policy") == ""
		},
	},
	{
		Rule: Rule{
			ID:             "PERMISSIONS_POLICY_MISSING",
			Title:          "Permissions-Policy missing",
			Severity:       finding.SeverityLow,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Define a Permissions-Policy header.",
		},
		check: func(in *headerInput) (string, bool) {
			return "No Permissions-Policy header present.", in.get("permissions-policy") == ""
		},
	},

	// Extended header rules.
	{
		Rule: Rule{
			ID:             "SERVER_DISCLOSURE",
			Title:          "Server software disclosed in response headers",
			Severity:       finding.SeverityLow,
			Classification: classify(compliance.A05, compliance.CWE200),
			Remediation:    "Remove or obfuscate Server and X-Powered-By headers.",
			Extended:       true,
		},
		check: checkInformationDisclosure,
	},
	{
		Rule: Rule{
			ID:             "XSS_PROTECTION_DEPRECATED",
			Title:          "Deprecated X-XSS-Protection filter enabled",
			Severity:       finding.SeverityInfo,
			Classification: classify(compliance.A05, compliance.CWE693),
			Remediation:    "Set X-XSS-Protection: 0 or remove it, and rely on Content-Security-Policy.",
			Extended:       true,
		},
		check: func(in *headerInput) (string, bool) {
			v := strings.TrimSpace(in.get("x-xss-protection"))
			return "x-xss-protection: " + v, v != "" && v != "0"
		},
	},
	{
		Rule: Rule{
			ID:             "CORS_WILDCARD",
			Title:          "CORS allows any origin",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A05, compliance.CWE942),
			Remediation:    "Restrict Access-Control-Allow-Origin to trusted origins.",
			Extended:       true,
		},
		check: checkCORSWildcard,
	},
	{
		Rule: Rule{
			ID:             "COOKIE_FLAGS_MISSING",
			Title:          "Cookie set without Secure or HttpOnly flag",
			Severity:       finding.SeverityMedium,
			Classification: classify(compliance.A05, compliance.CWE614),
			Remediation:    "Set the Secure and HttpOnly attributes on session cookies.",
			Extended:       true,
		},
		check: checkCookieFlags,
	},
}

func init() {
	for i := range headerRules {
		headerRules[i].Scope = ScopeHeader
	}
}

// informationDisclosureHeaders lists headers that should be removed/obfuscated
var informationDisclosureHeaders = []string{
	"server",
	"x-powered-by",
	"x-aspnet-version",
	"x-aspnetmvc-version",
}

func checkInformationDisclosure(in *headerInput) (string, bool) {
	var exposed []string
	for _, name := range informationDisclosureHeaders {
		if v := in.get(name); v != "" {
			exposed = append(exposed, name+": "+v)
		}
	}
	return strings.Join(exposed, "; "), len(exposed) > 0
}

func checkCORSWildcard(in *headerInput) (string, bool) {
	if strings.TrimSpace(in.get("access-control-allow-origin")) != "*" {
		return "", false
	}
	evidence := "access-control-allow-origin: *"
	if strings.EqualFold(in.get("access-control-allow-credentials"), "true") {
		evidence += " with access-control-allow-credentials: true"
	}
	return evidence, true
}

// checkCookieFlags parses the captured set-cookie value. Browsers join repeated
// Set-Cookie headers with newlines, so each line is one cookie.
func checkCookieFlags(in *headerInput) (string, bool) {
	raw := in.get("set-cookie")
	if raw == "" {
		return "", false
	}
	var weak []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		var missing []string
		if !c.Secure && in.scheme == "https" {
			missing = append(missing, "Secure")
		}
		if !c.HttpOnly {
			missing = append(missing, "HttpOnly")
		}
		if len(missing) > 0 {
			weak = append(weak, fmt.Sprintf("%s (missing %s)", c.Name, strings.Join(missing, ", ")))
		}
	}
	return strings.Join(weak, "; "), len(weak) > 0
}

// EvaluateHeaders runs the header rule table against a main frame snapshot.
// A nil snapshot yields no findings.
func EvaluateHeaders(mf *target.MainFrame, opts Options) []finding.Finding {
	if mf == nil {
		return nil
	}

	in := &headerInput{url: mf.URL, headers: mf.Headers}
	if in.headers == nil {
		in.headers = map[string]string{}
	}
	if u, err := url.Parse(mf.URL); err == nil {
		in.scheme = strings.ToLower(u.Scheme)
	}
	in.csp = in.get("content-security-policy")

	var out []finding.Finding
	for _, r := range headerRules {
		if !enabled(r.Rule, opts) {
			continue
		}
		if evidence, fired := r.check(in); fired {
			out = append(out, r.Finding(evidence))
		}
	}
	return out
}
