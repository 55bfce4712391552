// Package collector derives evidence-bearing signals from a parsed page.
//
// Every scan is a read-only query over the document; scans do not depend on each
// other and never fail. Elements whose URLs cannot be resolved are skipped for the
// check that needed the URL.
package collector

import (
	"net/url"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
)

// Collector runs the page scans. The zero value is not usable; call New.
type Collector struct {
	now   func() time.Time
	scans []func(*dom.Document) []signal.Signal
}

// Option customises a Collector.
type Option func(*Collector)

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Collector running every scan in a fixed order.
func New(opts ...Option) *Collector {
	c := &Collector{
		now: time.Now,
		scans: []func(*dom.Document) []signal.Signal{
			scanMixedContent,
			scanForms,
			scanURLLeakage,
			scanInlineScripts,
			scanTabnabbing,
			scanInlineHandlers,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect runs all scans against doc.
func (c *Collector) Collect(doc *dom.Document) signal.Snapshot {
	snap := signal.Snapshot{
		Page:    PageInfo(doc.Location(), c.now()),
		Signals: []signal.Signal{},
	}
	for _, scan := range c.scans {
		snap.Signals = append(snap.Signals, scan(doc)...)
	}
	return snap
}

// Collect runs a default Collector against doc.
func Collect(doc *dom.Document) signal.Snapshot {
	return New().Collect(doc)
}

// PageInfo describes a page location the way a browser reports it.
func PageInfo(loc *url.URL, at time.Time) signal.Page {
	return signal.Page{
		URL:         loc.String(),
		Origin:      Origin(loc),
		Protocol:    loc.Scheme + ":",
		CollectedAt: at.UTC(),
	}
}

// Origin returns scheme://host for network URLs and "null" otherwise.
func Origin(u *url.URL) string {
	if u == nil || u.Host == "" {
		return "null"
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss", "ftp":
		return u.Scheme + "://" + u.Host
	default:
		return "null"
	}
}
