package protocol

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
)

// requiredFields lists the payload keys each kind must carry.
var requiredFields = map[Type][]string{
	TypeGetTargetState:    {"target"},
	TypeCollectSignals:    {"target"},
	TypeNavigationStarted: {"target", "frameDepth"},
	TypeHeadersReceived:   {"target", "resourceKind", "url"},
	TypeRequestCompleted:  {"target", "url"},
	TypeTargetClosed:      {"target"},
}

// Decode parses a JSON envelope {"type": "...", ...payload}. Unknown kinds wrap
// ErrUnknownMessage; invalid payloads wrap ErrMalformedMessage.
func Decode(data []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedMessage, err)
	}

	var kind Type
	raw, ok := fields["type"]
	if !ok {
		return nil, fmt.Errorf("%w: missing type", apperrors.ErrMalformedMessage)
	}
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, fmt.Errorf("%w: type: %v", apperrors.ErrMalformedMessage, err)
	}

	var msg Message
	switch kind {
	case TypeGetTargetState:
		msg, ok = decodeAs[GetTargetState](data)
	case TypeCollectSignals:
		msg, ok = decodeAs[CollectSignals](data)
	case TypeNavigationStarted:
		msg, ok = decodeAs[NavigationStarted](data)
	case TypeHeadersReceived:
		msg, ok = decodeAs[HeadersReceived](data)
	case TypeRequestCompleted:
		msg, ok = decodeAs[RequestCompleted](data)
	case TypeTargetClosed:
		msg, ok = decodeAs[TargetClosed](data)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownMessage, kind)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid %s payload", apperrors.ErrMalformedMessage, kind)
	}

	for _, name := range requiredFields[kind] {
		if _, present := fields[name]; !present {
			return nil, fmt.Errorf("%w: %s requires %q: %w", apperrors.ErrMalformedMessage, kind, name, apperrors.ErrMissingRequired)
		}
	}
	return msg, nil
}

func decodeAs[M Message](data []byte) (Message, bool) {
	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Encode renders a message as a JSON envelope.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	kind, err := json.Marshal(m.Type())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	fields["type"] = kind
	return json.Marshal(fields)
}
