// Package target models the per-tab observation state tracked between scans.
package target

import (
	"maps"
	"slices"
	"strconv"
)

// ID identifies a browsing target (tab). Negative values are never valid.
type ID int

// Valid reports whether the identifier may address tracked state.
func (id ID) Valid() bool {
	return id >= 0
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// ResourceKind classifies the resource a network event belongs to.
type ResourceKind string

// DocumentLevel marks the top-level document of a target; only its headers update MainFrame.
const DocumentLevel ResourceKind = "document-level"

// Header is one raw response header as delivered by an event source.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MainFrame is the transport metadata of the most recent top-level response.
// Header names are lower-cased.
type MainFrame struct {
	URL        string            `json:"url" yaml:"url"`
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
}

// Header returns the value of a lower-cased header name, or "" when absent.
func (m *MainFrame) Header(name string) string {
	if m == nil {
		return ""
	}
	return m.Headers[name]
}

// RequestEntry records one completed subresource load.
type RequestEntry struct {
	URL          string `json:"url" yaml:"url"`
	ResourceType string `json:"resourceType" yaml:"resourceType"`
}

// State is a read-only snapshot of everything observed for a target.
type State struct {
	MainFrame  *MainFrame     `json:"mainFrame" yaml:"mainFrame"`
	RequestLog []RequestEntry `json:"requestLog" yaml:"requestLog"`
}

// Empty returns the default state reported for targets that were never observed.
func Empty() State {
	return State{MainFrame: nil, RequestLog: []RequestEntry{}}
}

// Clone deep-copies the state so callers never share storage with the tracker.
func (s State) Clone() State {
	out := State{RequestLog: slices.Clone(s.RequestLog)}
	if out.RequestLog == nil {
		out.RequestLog = []RequestEntry{}
	}
	if s.MainFrame != nil {
		mf := *s.MainFrame
		mf.Headers = maps.Clone(s.MainFrame.Headers)
		if mf.Headers == nil {
			mf.Headers = map[string]string{}
		}
		out.MainFrame = &mf
	}
	return out
}
