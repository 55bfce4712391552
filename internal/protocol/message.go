// Package protocol defines the messages exchanged between event sources, the
// state tracker and audit callers.
//
// The set of messages is closed: every kind implements Message through an
// unexported marker, Decode rejects unknown kinds, and the Dispatcher matches
// kinds exhaustively.
package protocol

import "github.com/khanhnv2901/seca-pagescan/internal/domain/target"

// Type is the envelope discriminator.
type Type string

const (
	TypeGetTargetState    Type = "get_target_state"
	TypeCollectSignals    Type = "collect_signals"
	TypeNavigationStarted Type = "navigation_started"
	TypeHeadersReceived   Type = "headers_received"
	TypeRequestCompleted  Type = "request_completed"
	TypeTargetClosed      Type = "target_closed"
)

// Types lists every message kind in protocol order.
func Types() []Type {
	return []Type{
		TypeGetTargetState,
		TypeCollectSignals,
		TypeNavigationStarted,
		TypeHeadersReceived,
		TypeRequestCompleted,
		TypeTargetClosed,
	}
}

// Message is one of the protocol messages defined in this package.
type Message interface {
	Type() Type
	TargetID() target.ID
	isMessage()
}

// GetTargetState asks for the tracked state of a target. It never fails.
type GetTargetState struct {
	Target target.ID `json:"target"`
}

// CollectSignals asks the target's document for page signals.
type CollectSignals struct {
	Target target.ID `json:"target"`
}

// NavigationStarted reports a navigation; depth 0 is the top-level frame.
type NavigationStarted struct {
	Target     target.ID `json:"target"`
	FrameDepth int       `json:"frameDepth"`
}

// HeadersReceived reports response headers. Only document-level resources
// update the target's main frame.
type HeadersReceived struct {
	Target       target.ID           `json:"target"`
	ResourceKind target.ResourceKind `json:"resourceKind"`
	URL          string              `json:"url"`
	StatusCode   int                 `json:"statusCode"`
	Headers      []target.Header     `json:"headers"`
}

// RequestCompleted reports a finished subresource load.
type RequestCompleted struct {
	Target       target.ID `json:"target"`
	URL          string    `json:"url"`
	ResourceKind string    `json:"resourceKind"`
}

// TargetClosed tells the tracker to drop a target.
type TargetClosed struct {
	Target target.ID `json:"target"`
}

func (GetTargetState) Type() Type    { return TypeGetTargetState }
func (CollectSignals) Type() Type    { return TypeCollectSignals }
func (NavigationStarted) Type() Type { return TypeNavigationStarted }
func (HeadersReceived) Type() Type   { return TypeHeadersReceived }
func (RequestCompleted) Type() Type  { return TypeRequestCompleted }
func (TargetClosed) Type() Type      { return TypeTargetClosed }

func (m GetTargetState) TargetID() target.ID    { return m.Target }
func (m CollectSignals) TargetID() target.ID    { return m.Target }
func (m NavigationStarted) TargetID() target.ID { return m.Target }
func (m HeadersReceived) TargetID() target.ID   { return m.Target }
func (m RequestCompleted) TargetID() target.ID  { return m.Target }
func (m TargetClosed) TargetID() target.ID      { return m.Target }

func (GetTargetState) isMessage()    {}
func (CollectSignals) isMessage()    {}
func (NavigationStarted) isMessage() {}
func (HeadersReceived) isMessage()   {}
func (RequestCompleted) isMessage()  {}
func (TargetClosed) isMessage()      {}
