package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"gopkg.in/yaml.v3"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func mustRule(t *testing.T, id string) checker.Rule {
	t.Helper()
	rule, ok := checker.Lookup(id)
	if !ok {
		t.Fatalf("rule %s not in catalog", id)
	}
	return rule
}

func sampleResults(t *testing.T) []audit.Result {
	t.Helper()
	findings := finding.Normalize([]finding.Finding{
		mustRule(t, "NOSNIFF_MISSING").Finding("X-Content-Type-Options not set"),
		mustRule(t, "HTTP_IN_USE").Finding("http://example.com/"),
	})
	return []audit.Result{
		{
			URL: "http://example.com/",
			Report: &audit.Report{
				URL:       "http://example.com/",
				Origin:    "http://example.com",
				ScannedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
				Findings:  findings,
				Summary:   finding.Summarize(findings),
			},
			Duration: 1500 * time.Millisecond,
		},
		{
			URL:   "https://down.example/",
			Error: "target could not be reached",
		},
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{formatText, formatJSON, formatYAML} {
		if err := validateFormat(f); err != nil {
			t.Fatalf("validateFormat(%q): %v", f, err)
		}
	}
	if err := validateFormat(formatPDF); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Fatalf("expected pdf to be rejected for structured output, got %v", err)
	}
	for _, f := range []string{formatHTML, formatMarkdown, formatPDF, formatJSON} {
		if err := validateReportFormat(f); err != nil {
			t.Fatalf("validateReportFormat(%q): %v", f, err)
		}
	}
	if err := validateReportFormat("xml"); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Fatalf("expected xml to be rejected, got %v", err)
	}
}

func TestWriteResultsText(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	if err := writeResults(&buf, formatText, sampleResults(t)); err != nil {
		t.Fatalf("writeResults: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"✓ http://example.com/ (1.50s)",
		"    HTTP_IN_USE  ",
		"    NOSNIFF_MISSING  ",
		"evidence: X-Content-Type-Options not set",
		"Summary: Critical 0 | High 1 | Medium 0 | Low 1 | Info 0",
		"✗ https://down.example/\n  target could not be reached",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "HTTP_IN_USE") > strings.Index(out, "NOSNIFF_MISSING") {
		t.Fatalf("expected most severe finding first:\n%s", out)
	}
}

func TestWriteResultsTextDegradedAndClean(t *testing.T) {
	disableColor(t)

	results := []audit.Result{{
		URL: "https://example.com/",
		Report: &audit.Report{
			URL:         "https://example.com/",
			Summary:     finding.Summarize(nil),
			SignalError: "page signals unavailable",
		},
	}}
	var buf bytes.Buffer
	if err := writeResults(&buf, formatText, results); err != nil {
		t.Fatalf("writeResults: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "! content checks skipped: page signals unavailable") {
		t.Fatalf("expected degraded notice:\n%s", out)
	}
	if !strings.Contains(out, "No findings") {
		t.Fatalf("expected clean report notice:\n%s", out)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResults(&buf, formatJSON, sampleResults(t)); err != nil {
		t.Fatalf("writeResults: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 results, got %d", len(decoded))
	}
	report := decoded[0]["report"].(map[string]any)
	first := report["findings"].([]any)[0].(map[string]any)
	if first["id"] != "HTTP_IN_USE" || first["severity"] != "High" {
		t.Fatalf("unexpected first finding %v", first)
	}
	if decoded[1]["error"] != "target could not be reached" {
		t.Fatalf("unexpected error entry %v", decoded[1])
	}
}

func TestWriteResultsYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResults(&buf, formatYAML, sampleResults(t)); err != nil {
		t.Fatalf("writeResults: %v", err)
	}

	var decoded []audit.Result
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Report == nil {
		t.Fatalf("unexpected decoded results %+v", decoded)
	}
	if decoded[0].Report.Findings[0].Severity != finding.SeverityHigh {
		t.Fatalf("expected severity to survive yaml, got %v", decoded[0].Report.Findings[0].Severity)
	}
	if !strings.Contains(buf.String(), "severity: High") {
		t.Fatalf("expected severity names in yaml:\n%s", buf.String())
	}
}

func TestBuildTemplateData(t *testing.T) {
	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	data := buildTemplateData(sampleResults(t), now)

	if data.Total != 2 || data.Succeeded != 1 || data.Failed != 1 {
		t.Fatalf("unexpected counts %+v", data)
	}
	if data.GeneratedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", data.GeneratedAt)
	}
	if data.Summary["High"] != 1 || data.Summary["Low"] != 1 || data.Summary["Critical"] != 0 {
		t.Fatalf("unexpected summary %v", data.Summary)
	}
}

func TestWriteDocumentReports(t *testing.T) {
	data := buildTemplateData(sampleResults(t), time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeDocumentReport(&buf, formatMarkdown, data); err != nil {
			t.Fatalf("markdown: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Page Security Audit",
			"| 2 | 1 | 1 |",
			"| High | 1 |",
			"## http://example.com/",
			"| High | `HTTP_IN_USE` |",
			"in 1.5s",
			"> Scan failed: target could not be reached",
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in markdown:\n%s", want, out)
			}
		}
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeDocumentReport(&buf, formatHTML, data); err != nil {
			t.Fatalf("html: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "HTTP_IN_USE") || !strings.Contains(out, "badge-high") {
			t.Fatalf("unexpected html output:\n%s", out)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeDocumentReport(&buf, formatPDF, data); err != nil {
			t.Fatalf("pdf: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
			t.Fatalf("expected a PDF document, got %q", buf.Bytes()[:min(16, buf.Len())])
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := writeDocumentReport(&bytes.Buffer{}, "docx", data); err == nil {
			t.Fatal("expected error for unknown format")
		}
	})
}

func TestFormatDurationLabel(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5 min"},
	}
	for _, tt := range tests {
		if got := formatDurationLabel(tt.in); got != tt.want {
			t.Fatalf("formatDurationLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := formatShortTimestamp(time.Time{}); got != "" {
		t.Fatalf("expected empty timestamp for zero time, got %q", got)
	}
}

func TestWriteRules(t *testing.T) {
	disableColor(t)

	rules, err := selectRules("")
	if err != nil {
		t.Fatalf("selectRules: %v", err)
	}

	var buf bytes.Buffer
	if err := writeRules(&buf, formatText, rules); err != nil {
		t.Fatalf("writeRules: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "ID") {
		t.Fatalf("expected header row, got:\n%s", out)
	}
	if !strings.Contains(out, "SERVER_DISCLOSURE*") {
		t.Fatalf("expected extended rules to be marked:\n%s", out)
	}
	if strings.Contains(out, "CSP_MISSING*") {
		t.Fatalf("base rule marked as extended:\n%s", out)
	}
	if !strings.Contains(out, "* extended rule, enabled with --extended") {
		t.Fatalf("expected footnote:\n%s", out)
	}

	buf.Reset()
	if err := writeRules(&buf, formatJSON, rules); err != nil {
		t.Fatalf("writeRules json: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != len(checker.Catalog()) {
		t.Fatalf("expected %d rules, got %d", len(checker.Catalog()), len(decoded))
	}
}
