package finding

import "slices"

// Classification carries the standardized labels of a rule. Both values are opaque.
type Classification struct {
	OWASP string `json:"owasp" yaml:"owasp"`
	CWE   string `json:"cwe" yaml:"cwe"`
}

// Finding is one audit result. ID identifies the rule, not the occurrence.
type Finding struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	Severity       Severity       `json:"severity" yaml:"severity"`
	Classification Classification `json:"classification" yaml:"classification"`
	Evidence       string         `json:"evidence" yaml:"evidence"`
	Remediation    string         `json:"remediation" yaml:"remediation"`
}

// Normalize collapses findings sharing an ID into the most severe instance (the first
// one seen wins a tie) and orders the result by severity, most severe first. The sort
// is stable, so equal severities keep their first-seen order.
func Normalize(findings []Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	index := make(map[string]int, len(findings))

	for _, f := range findings {
		pos, seen := index[f.ID]
		if !seen {
			index[f.ID] = len(out)
			out = append(out, f)
			continue
		}
		if f.Severity.Rank() > out[pos].Severity.Rank() {
			out[pos] = f
		}
	}

	slices.SortStableFunc(out, func(a, b Finding) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return out
}

// Summary counts findings per severity name.
type Summary map[string]int

// Summarize returns a count for every severity, including zero counts.
func Summarize(findings []Finding) Summary {
	summary := make(Summary, int(severityCount))
	for _, s := range Severities() {
		summary[s.String()] = 0
	}
	for _, f := range findings {
		summary[f.Severity.String()]++
	}
	return summary
}
