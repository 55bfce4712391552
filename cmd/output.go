package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("output format %q: %w", format, apperrors.ErrUnsupportedFormat)
	}
}

// validateReportFormat also accepts the document formats scans can render.
func validateReportFormat(format string) error {
	switch format {
	case formatHTML, formatMarkdown, formatPDF:
		return nil
	default:
		return validateFormat(format)
	}
}

// encodeStructured writes v as JSON or YAML.
func encodeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("output format %q: %w", format, apperrors.ErrUnsupportedFormat)
	}
}

func writeResults(w io.Writer, format string, results []audit.Result) error {
	switch format {
	case formatText:
	case formatHTML, formatMarkdown, formatPDF:
		return writeDocumentReport(w, format, buildTemplateData(results, time.Now()))
	default:
		return encodeStructured(w, format, results)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeResultText(w, res)
	}
	return nil
}

func writeResultText(w io.Writer, res audit.Result) {
	if res.Error != "" {
		fmt.Fprintf(w, "%s %s\n  %s\n", colorError("✗"), res.URL, res.Error)
		return
	}
	r := res.Report
	fmt.Fprintf(w, "%s %s %s\n", colorSuccess("✓"), r.URL, colorMuted(fmt.Sprintf("(%.2fs)", res.Duration.Seconds())))
	if r.Degraded() {
		fmt.Fprintf(w, "  %s content checks skipped: %s\n", colorWarn("!"), r.SignalError)
	}
	if len(r.Findings) == 0 {
		fmt.Fprintf(w, "  %s\n", colorSuccess("No findings"))
		return
	}

	var current finding.Severity = -1
	for _, f := range r.Findings {
		if f.Severity != current {
			current = f.Severity
			fmt.Fprintf(w, "  %s\n", formatSeverityWithColor(current))
		}
		fmt.Fprintf(w, "    %s  %s\n", f.ID, f.Title)
		fmt.Fprintf(w, "      %s %s | %s\n", colorMuted("class:"), f.Classification.OWASP, f.Classification.CWE)
		if f.Evidence != "" {
			fmt.Fprintf(w, "      %s %s\n", colorMuted("evidence:"), f.Evidence)
		}
		fmt.Fprintf(w, "      %s %s\n", colorMuted("fix:"), f.Remediation)
	}
	fmt.Fprintf(w, "  %s\n", formatSummary(r.Summary))
}

func formatSummary(s finding.Summary) string {
	parts := make([]string, 0, len(finding.Severities()))
	for _, sev := range finding.Severities() {
		parts = append(parts, fmt.Sprintf("%s %d", sev, s[sev.String()]))
	}
	return "Summary: " + strings.Join(parts, " | ")
}

func writeRules(w io.Writer, format string, rules []ruleView) error {
	if format != formatText {
		return encodeStructured(w, format, rules)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tSCOPE\tOWASP\tCWE\tTITLE")
	for _, r := range rules {
		id := r.ID
		if r.Extended {
			id += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", id, r.Severity, r.Scope, r.Classification.OWASP, r.Classification.CWE, r.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, colorMuted("* extended rule, enabled with --extended"))
	return nil
}

// ruleView is a catalogue entry with the requirements of one framework.
type ruleView struct {
	checker.Rule `yaml:",inline"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}
