package cmd

import (
	"github.com/fatih/color"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()

	colorCritical = color.New(color.FgMagenta, color.Bold).SprintFunc()
	colorHigh     = color.New(color.FgRed, color.Bold).SprintFunc()
	colorMuted    = color.New(color.Faint).SprintFunc()
)

func formatSeverityWithColor(s finding.Severity) string {
	label := s.String()
	switch s {
	case finding.SeverityCritical:
		return colorCritical(label)
	case finding.SeverityHigh:
		return colorHigh(label)
	case finding.SeverityMedium:
		return colorWarn(label)
	case finding.SeverityLow:
		return colorInfo(label)
	default:
		return label
	}
}
