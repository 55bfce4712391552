package protocol

import (
	"encoding/json"

	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
)

// Reply is the response to a dispatched message.
type Reply interface {
	isReply()
}

// StateReply answers get_target_state.
type StateReply struct {
	State target.State `json:"state"`
}

// SignalsReply answers collect_signals. A non-empty Error marks an unreachable
// target; callers treat it as an empty signal set.
type SignalsReply struct {
	Page    *signal.Page
	Signals []signal.Signal
	Error   string
}

// MarshalJSON renders {"signals": [...]} on success and {"error": "..."} otherwise.
func (r SignalsReply) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	signals := r.Signals
	if signals == nil {
		signals = []signal.Signal{}
	}
	return json.Marshal(struct {
		Page    *signal.Page    `json:"page,omitempty"`
		Signals []signal.Signal `json:"signals"`
	}{r.Page, signals})
}

// Ack acknowledges an event message.
type Ack struct {
	OK bool `json:"ok"`
}

func (StateReply) isReply()   {}
func (SignalsReply) isReply() {}
func (Ack) isReply()          {}
