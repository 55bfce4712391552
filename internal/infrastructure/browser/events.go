package browser

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/fetch"
	"github.com/khanhnv2901/seca-pagescan/internal/protocol"
)

type pendingRequest struct {
	url  string
	kind string
}

// translator turns DevTools network events for one tab into protocol events.
// It is safe for concurrent use.
type translator struct {
	id        target.ID
	mainFrame cdp.FrameID

	mu      sync.Mutex
	pending map[network.RequestID]pendingRequest
}

func newTranslator(id target.ID, mainFrame cdp.FrameID) *translator {
	return &translator{
		id:        id,
		mainFrame: mainFrame,
		pending:   make(map[network.RequestID]pendingRequest),
	}
}

func (t *translator) translate(ev any) []protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Request == nil {
			return nil
		}
		t.pending[e.RequestID] = pendingRequest{
			url:  e.Request.URL,
			kind: resourceKind(e.Type, e.FrameID == t.mainFrame),
		}
		// a document request whose loader is itself starts a navigation
		if e.Type == network.ResourceTypeDocument && string(e.LoaderID) == string(e.RequestID) {
			depth := 1
			if e.FrameID == t.mainFrame {
				depth = 0
			}
			return []protocol.Message{protocol.NavigationStarted{Target: t.id, FrameDepth: depth}}
		}

	case *network.EventResponseReceived:
		if e.Response == nil {
			return nil
		}
		if p, ok := t.pending[e.RequestID]; ok {
			p.url = e.Response.URL
			t.pending[e.RequestID] = p
		}
		if e.Type == network.ResourceTypeDocument && e.FrameID == t.mainFrame {
			return []protocol.Message{protocol.HeadersReceived{
				Target:       t.id,
				ResourceKind: target.DocumentLevel,
				URL:          e.Response.URL,
				StatusCode:   int(e.Response.Status),
				Headers:      convertHeaders(e.Response.Headers),
			}}
		}

	case *network.EventLoadingFinished:
		p, ok := t.pending[e.RequestID]
		if !ok {
			return nil
		}
		delete(t.pending, e.RequestID)
		return []protocol.Message{protocol.RequestCompleted{Target: t.id, URL: p.url, ResourceKind: p.kind}}

	case *network.EventLoadingFailed:
		delete(t.pending, e.RequestID)
	}
	return nil
}

// resourceKind names a DevTools resource type the way extension request
// listeners do.
func resourceKind(rt network.ResourceType, mainFrame bool) string {
	switch rt {
	case network.ResourceTypeDocument:
		if mainFrame {
			return "main_frame"
		}
		return "sub_frame"
	case network.ResourceTypeXHR, network.ResourceTypeFetch:
		return "xmlhttprequest"
	case network.ResourceTypeCSPViolationReport:
		return "csp_report"
	case network.ResourceTypeStylesheet,
		network.ResourceTypeImage,
		network.ResourceTypeScript,
		network.ResourceTypeFont,
		network.ResourceTypeMedia,
		network.ResourceTypeWebSocket,
		network.ResourceTypePing:
		return strings.ToLower(string(rt))
	default:
		return "other"
	}
}

// convertHeaders splits the newline-joined values DevTools reports for repeated
// headers back into separate entries.
func convertHeaders(h network.Headers) []target.Header {
	split := make(http.Header, len(h))
	for name, v := range h {
		split[name] = strings.Split(fmt.Sprint(v), "\n")
	}
	return fetch.FlattenHeaders(split)
}
