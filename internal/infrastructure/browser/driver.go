// Package browser drives headless Chrome over the DevTools protocol. Each target
// is a tab; its network events are published as protocol events and its live
// document is serialized for signal collection.
package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/khanhnv2901/seca-pagescan/internal/collector"
	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/infrastructure/fetch"
	"github.com/khanhnv2901/seca-pagescan/internal/protocol"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"go.uber.org/zap"
)

// Options configures the browser.
type Options struct {
	// ExecPath overrides Chrome discovery.
	ExecPath  string
	Headless  bool
	NoSandbox bool
	UserAgent string
	Timeout   time.Duration
	// Settle is how long to wait after load for late requests.
	Settle time.Duration
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Driver opens one Chrome tab per target.
type Driver struct {
	pub       fetch.Publisher
	opts      Options
	logger    *zap.Logger
	collector *collector.Collector

	allocCtx    context.Context
	allocCancel context.CancelFunc

	nextID atomic.Int64
	mu     sync.Mutex
	tabs   map[target.ID]*tab
}

// New prepares a browser allocator. Chrome starts with the first Open.
func New(pub fetch.Publisher, opts Options, logger *zap.Logger) *Driver {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultRequestTimeout
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Driver{
		pub:         pub,
		opts:        opts,
		logger:      logger,
		collector:   collector.New(),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabs:        make(map[target.ID]*tab),
	}
}

// Open navigates a fresh tab to rawURL and waits for the page to settle.
func (d *Driver) Open(ctx context.Context, rawURL string) (target.ID, error) {
	u, err := fetch.NormalizeURL(rawURL)
	if err != nil {
		return 0, err
	}

	tabCtx, cancel := chromedp.NewContext(d.allocCtx)
	// the first Run allocates the tab; its context owns the tab's lifetime
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return 0, fmt.Errorf("%w: start browser: %v", apperrors.ErrTargetUnreachable, err)
	}

	id := target.ID(d.nextID.Add(1))
	mainFrame := cdp.FrameID(chromedp.FromContext(tabCtx).Target.TargetID)
	tr := newTranslator(id, mainFrame)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		for _, msg := range tr.translate(ev) {
			if _, err := d.pub.Dispatch(context.Background(), msg); err != nil {
				d.logger.Warn("failed to publish browser event", zap.String("type", string(msg.Type())), zap.Error(err))
			}
		}
	})

	d.mu.Lock()
	d.tabs[id] = &tab{ctx: tabCtx, cancel: cancel}
	d.mu.Unlock()

	navCtx, navCancel := context.WithTimeout(tabCtx, d.opts.Timeout)
	defer navCancel()
	stop := context.AfterFunc(ctx, navCancel)
	defer stop()

	start := time.Now()
	if err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(u.String()),
		chromedp.Sleep(d.opts.Settle),
	); err != nil {
		_ = d.Close(context.WithoutCancel(ctx), id)
		return 0, fmt.Errorf("%w: navigate %s: %v", apperrors.ErrTargetUnreachable, u, err)
	}

	d.logger.Debug("page loaded",
		zap.Int("target", int(id)),
		zap.String("url", u.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return id, nil
}

// Collect serializes the tab's current document and runs the page scans.
func (d *Driver) Collect(ctx context.Context, id target.ID) (signal.Snapshot, error) {
	d.mu.Lock()
	t, ok := d.tabs[id]
	d.mu.Unlock()
	if !ok {
		return signal.Snapshot{}, fmt.Errorf("target %d: %w", id, apperrors.ErrTargetUnreachable)
	}

	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var location, markup string
	if err := chromedp.Run(runCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	); err != nil {
		return signal.Snapshot{}, fmt.Errorf("target %d: %w: %v", id, apperrors.ErrTargetUnreachable, err)
	}

	doc, err := dom.ParseString(markup, location)
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("target %d: %w: %v", id, apperrors.ErrNoDocument, err)
	}
	return d.collector.Collect(doc), nil
}

// Close closes the tab and reports the target closed.
func (d *Driver) Close(ctx context.Context, id target.ID) error {
	d.mu.Lock()
	t, ok := d.tabs[id]
	delete(d.tabs, id)
	d.mu.Unlock()
	if ok {
		t.cancel()
	}
	if _, err := d.pub.Dispatch(ctx, protocol.TargetClosed{Target: id}); err != nil {
		return fmt.Errorf("publish %s: %w", protocol.TypeTargetClosed, err)
	}
	return nil
}

// Shutdown closes every tab and the browser process.
func (d *Driver) Shutdown() {
	d.mu.Lock()
	for id, t := range d.tabs {
		t.cancel()
		delete(d.tabs, id)
	}
	d.mu.Unlock()
	d.allocCancel()
}
