package application

import (
	"fmt"

	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/application/tracker"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/browser"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/fetch"
	"github.com/khanhnv2901/seca-pagescan/internal/protocol"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"go.uber.org/zap"
)

// Driver modes.
const (
	// ModeFeed runs without a driver; events arrive through the protocol.
	ModeFeed    = ""
	ModeFetch   = "fetch"
	ModeBrowser = "browser"
)

// Options selects and tunes the components wired by NewContainer.
type Options struct {
	Mode    string
	Audit   audit.Config
	Fetch   fetch.Options
	Browser browser.Options
}

// Container holds the tracker, dispatcher, driver and audit services.
// This is a simple dependency injection container
type Container struct {
	Store        *tracker.Store
	Dispatcher   *protocol.Dispatcher
	Driver       audit.Driver
	AuditService *audit.Service
	Scanner      *audit.Scanner

	shutdown func()
}

// NewContainer wires the application for the given driver mode.
func NewContainer(opts Options, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := tracker.NewStore(tracker.WithLogger(logger.Named("tracker")))
	// the driver publishes into the dispatcher and the dispatcher collects from the
	// driver, so the dispatcher is built once the driver exists
	relay := &dispatchRelay{}

	c := &Container{Store: store}
	switch opts.Mode {
	case ModeFeed:
	case ModeFetch:
		c.Driver = fetch.New(relay, opts.Fetch, logger.Named("fetch"))
	case ModeBrowser:
		d := browser.New(relay, opts.Browser, logger.Named("browser"))
		c.Driver = d
		c.shutdown = d.Shutdown
	default:
		return nil, fmt.Errorf("mode %q: %w", opts.Mode, apperrors.ErrUnsupportedMode)
	}

	dispatchOpts := []protocol.DispatcherOption{protocol.WithSignalTimeout(opts.Audit.SignalTimeout)}
	if c.Driver != nil {
		dispatchOpts = append(dispatchOpts, protocol.WithSignalSource(c.Driver))
	}
	c.Dispatcher = protocol.NewDispatcher(store, logger.Named("protocol"), dispatchOpts...)
	relay.target = c.Dispatcher

	c.AuditService = audit.NewService(store, c.Driver, opts.Audit, logger.Named("audit"))
	if c.Driver != nil {
		c.Scanner = audit.NewScanner(c.Driver, c.AuditService, logger.Named("scanner"))
	}
	return c, nil
}

// Close releases driver resources.
func (c *Container) Close() {
	if c.shutdown != nil {
		c.shutdown()
	}
}
