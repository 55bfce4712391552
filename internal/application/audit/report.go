package audit

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/khanhnv2901/seca-pagescan/internal/collector"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
)

// Report is the result of one audit. Findings are normalized: one per rule,
// most severe first.
type Report struct {
	ID          uuid.UUID         `json:"id" yaml:"id"`
	Target      target.ID         `json:"target" yaml:"target"`
	URL         string            `json:"url" yaml:"url"`
	Origin      string            `json:"origin" yaml:"origin"`
	ScannedAt   time.Time         `json:"scannedAt" yaml:"scannedAt"`
	Findings    []finding.Finding `json:"findings" yaml:"findings"`
	Summary     finding.Summary   `json:"summary" yaml:"summary"`
	SignalError string            `json:"signalError,omitempty" yaml:"signalError,omitempty"`
}

// Degraded reports whether content signals were unavailable for this audit.
func (r *Report) Degraded() bool {
	return r.SignalError != ""
}

// originOf returns "" when the URL does not parse.
func originOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return collector.Origin(u)
}
