package cmd

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
	formatPDF      = "pdf"

	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
	maxPDFResults        = 50
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

var (
	reportTemplateFuncs = map[string]any{
		"join":           strings.Join,
		"formatTime":     formatShortTimestamp,
		"formatDuration": formatDurationLabel,
		"badgeClass":     severityBadgeClass,
		"severities":     finding.Severities,
		"count":          func(s finding.Summary, sev finding.Severity) int { return s[sev.String()] },
	}

	htmlReportTemplate = htmltemplate.Must(
		htmltemplate.New("report.html").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = texttemplate.Must(
		texttemplate.New("report.md").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

// TemplateData holds the data for HTML/PDF/Markdown rendering
type TemplateData struct {
	GeneratedAt time.Time
	Total       int
	Succeeded   int
	Failed      int
	Summary     finding.Summary
	Results     []audit.Result
}

func buildTemplateData(results []audit.Result, now time.Time) TemplateData {
	data := TemplateData{
		GeneratedAt: now.UTC(),
		Total:       len(results),
		Summary:     finding.Summarize(nil),
		Results:     results,
	}
	for _, res := range results {
		if res.Error != "" {
			data.Failed++
			continue
		}
		data.Succeeded++
		for sev, n := range res.Report.Summary {
			data.Summary[sev] += n
		}
	}
	return data
}

// writeDocumentReport renders the human-oriented report formats.
func writeDocumentReport(w io.Writer, format string, data TemplateData) error {
	switch format {
	case formatHTML:
		if err := htmlReportTemplate.Execute(w, data); err != nil {
			return fmt.Errorf("failed to execute %s template: %w", htmlReportTemplate.Name(), err)
		}
	case formatMarkdown:
		if err := markdownReportTemplate.Execute(w, data); err != nil {
			return fmt.Errorf("failed to execute %s template: %w", markdownReportTemplate.Name(), err)
		}
	case formatPDF:
		pdf, err := generatePDFReportBytes(data)
		if err != nil {
			return err
		}
		_, err = w.Write(pdf)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	return nil
}

func formatShortTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 02 15:04")
}

func formatDurationLabel(d time.Duration) string {
	seconds := d.Seconds()
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%.1f min", seconds/60)
}

func severityBadgeClass(s finding.Severity) string {
	return "badge-" + strings.ToLower(s.String())
}

func generatePDFReportBytes(data TemplateData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Page Security Audit", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format(time.RFC3339)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Pages: %d | Audited: %d | Failed: %d", data.Total, data.Succeeded, data.Failed), "", 1, "", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, formatSummary(data.Summary), "", 1, "", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Findings by Page", "", 1, "", false, 0, "")
	pdf.Ln(2)

	for i, res := range data.Results {
		if i == maxPDFResults {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 6, fmt.Sprintf("... %d additional pages omitted ...", len(data.Results)-maxPDFResults), "", 1, "", false, 0, "")
			break
		}
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 7, tr(res.URL), "", 1, "", true, 0, "")
		pdf.Ln(1)

		if res.Error != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr("Scan failed: "+res.Error), "", "", false)
			pdf.Ln(3)
			continue
		}

		report := res.Report
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Duration: %s | %s", formatDurationLabel(res.Duration), formatSummary(report.Summary)), "", 1, "", false, 0, "")
		if report.Degraded() {
			pdf.SetFont("Arial", "I", 8)
			pdf.MultiCell(0, 4, tr("Content checks skipped: "+report.SignalError), "", "", false)
		}

		for _, f := range report.Findings {
			if pdf.GetY() > 270 {
				pdf.AddPage()
			}
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("[%s] %s - %s", f.Severity, f.ID, f.Title)), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 8)
			pdf.CellFormat(0, 4, tr(fmt.Sprintf("  %s | %s", f.Classification.OWASP, f.Classification.CWE)), "", 1, "", false, 0, "")
			if f.Evidence != "" {
				pdf.MultiCell(0, 4, tr("  Evidence: "+f.Evidence), "", "", false)
			}
			pdf.SetFont("Arial", "I", 8)
			pdf.MultiCell(0, 4, tr("  Fix: "+f.Remediation), "", "", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
