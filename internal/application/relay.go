package application

import (
	"context"

	"github.com/khanhnv2901/seca-pagescan/internal/protocol"
)

// dispatchRelay forwards driver events to a dispatcher assigned after construction.
type dispatchRelay struct {
	target *protocol.Dispatcher
}

func (r *dispatchRelay) Dispatch(ctx context.Context, msg protocol.Message) (protocol.Reply, error) {
	return r.target.Dispatch(ctx, msg)
}
