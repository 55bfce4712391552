package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"go.uber.org/zap"
)

// Tracker is the state store the dispatcher routes events into.
type Tracker interface {
	OnNavigationStart(id target.ID, frameDepth int)
	OnMainFrameHeaders(id target.ID, url string, statusCode int, headers []target.Header)
	OnRequestCompleted(id target.ID, url, resourceType string)
	State(id target.ID) target.State
	Remove(id target.ID)
}

// Dispatcher routes decoded messages to the tracker and the signal source.
type Dispatcher struct {
	tracker       Tracker
	signals       signal.Source
	logger        *zap.Logger
	signalTimeout time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSignalSource sets where collect_signals is answered from. Without one, every
// collection reports the target as unreachable.
func WithSignalSource(src signal.Source) DispatcherOption {
	return func(d *Dispatcher) { d.signals = src }
}

// WithSignalTimeout bounds collect_signals.
func WithSignalTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.signalTimeout = timeout
		}
	}
}

// NewDispatcher creates a dispatcher over the given tracker.
func NewDispatcher(tracker Tracker, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		tracker:       tracker,
		logger:        logger,
		signalTimeout: constants.DefaultSignalTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchJSON decodes an envelope and dispatches it.
func (d *Dispatcher) DispatchJSON(ctx context.Context, data []byte) (Reply, error) {
	msg, err := Decode(data)
	if err != nil {
		d.logger.Warn("rejected message", zap.Error(err))
		return nil, err
	}
	return d.Dispatch(ctx, msg)
}

// Dispatch handles one message. Only unknown message kinds produce an error;
// collection failures are reported inside the SignalsReply.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Reply, error) {
	switch m := msg.(type) {
	case GetTargetState:
		return StateReply{State: d.tracker.State(m.Target)}, nil

	case CollectSignals:
		return d.collect(ctx, m.Target), nil

	case NavigationStarted:
		d.tracker.OnNavigationStart(m.Target, m.FrameDepth)
		return Ack{OK: true}, nil

	case HeadersReceived:
		if m.ResourceKind == target.DocumentLevel {
			d.tracker.OnMainFrameHeaders(m.Target, m.URL, m.StatusCode, m.Headers)
		}
		return Ack{OK: true}, nil

	case RequestCompleted:
		d.tracker.OnRequestCompleted(m.Target, m.URL, m.ResourceKind)
		return Ack{OK: true}, nil

	case TargetClosed:
		d.tracker.Remove(m.Target)
		d.logger.Debug("target closed", zap.Int("target", int(m.Target)))
		return Ack{OK: true}, nil

	default:
		return nil, fmt.Errorf("%w: %T", apperrors.ErrUnknownMessage, msg)
	}
}

func (d *Dispatcher) collect(ctx context.Context, id target.ID) SignalsReply {
	if d.signals == nil {
		return SignalsReply{Error: apperrors.ErrTargetUnreachable.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, d.signalTimeout)
	defer cancel()

	snap, err := d.signals.Collect(ctx, id)
	if err != nil {
		d.logger.Info("signal collection failed",
			zap.Int("target", int(id)),
			zap.Error(err),
		)
		return SignalsReply{Error: err.Error()}
	}
	return SignalsReply{Page: &snap.Page, Signals: snap.Signals}
}
