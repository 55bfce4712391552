// Package signal defines the structured observations the page collector derives
// from a live document. Signals feed the content rules; they are never findings.
package signal

import (
	"context"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
)

// Kind discriminates the signal variants.
type Kind string

const (
	KindMixedContent         Kind = "MIXED_CONTENT"
	KindFormPostsToHTTP      Kind = "FORM_POSTS_TO_HTTP"
	KindPasswordViaGET       Kind = "PASSWORD_SENT_VIA_GET"
	KindPasswordAutocomplete Kind = "PASSWORD_AUTOCOMPLETE_MISSING"
	KindTokenInURL           Kind = "TOKEN_IN_URL"
	KindDOMXSSInline         Kind = "DOM_XSS_SOURCE_TO_SINK_INLINE"
	KindTabnabbing           Kind = "TABNABBING_RISK"
	KindInlineEventHandler   Kind = "INLINE_EVENT_HANDLER"
)

// Signal is a tagged record: Kind selects which of the optional fields are set.
// Evidence is always populated.
type Signal struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// MIXED_CONTENT
	Element string `json:"element,omitempty" yaml:"element,omitempty"`
	// MIXED_CONTENT, INLINE_EVENT_HANDLER
	Attr string `json:"attr,omitempty" yaml:"attr,omitempty"`
	// MIXED_CONTENT, FORM_POSTS_TO_HTTP
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// FORM_POSTS_TO_HTTP
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	// TOKEN_IN_URL
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	// DOM_XSS_SOURCE_TO_SINK_INLINE
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Sink   string `json:"sink,omitempty" yaml:"sink,omitempty"`
	// TABNABBING_RISK
	Href string `json:"href,omitempty" yaml:"href,omitempty"`

	Evidence string `json:"evidence" yaml:"evidence"`
}

// Page describes the document a snapshot was taken from.
type Page struct {
	URL         string    `json:"url" yaml:"url"`
	Origin      string    `json:"origin" yaml:"origin"`
	Protocol    string    `json:"protocol" yaml:"protocol"`
	CollectedAt time.Time `json:"collectedAt" yaml:"collectedAt"`
}

// Snapshot is the output of one collector run.
type Snapshot struct {
	Page    Page     `json:"page" yaml:"page"`
	Signals []Signal `json:"signals" yaml:"signals"`
}

// Has reports whether any signal of the given kind is present.
func Has(signals []Signal, kind Kind) bool {
	return First(signals, kind) != nil
}

// First returns the first signal of the given kind, or nil.
func First(signals []Signal, kind Kind) *Signal {
	for i := range signals {
		if signals[i].Kind == kind {
			return &signals[i]
		}
	}
	return nil
}

// Source collects a snapshot of a target's live document. Implementations wrap
// ErrTargetUnreachable from internal/shared/errors when the document is gone.
type Source interface {
	Collect(ctx context.Context, id target.ID) (Snapshot, error)
}
