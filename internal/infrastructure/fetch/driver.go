// Package fetch is a static page driver: one HTTP GET per target. It reports the
// navigation and document response as protocol events and collects signals from
// the returned HTML without executing scripts.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/collector"
	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/protocol"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"go.uber.org/zap"
)

// Publisher delivers protocol events, typically a *protocol.Dispatcher.
type Publisher interface {
	Dispatch(ctx context.Context, msg protocol.Message) (protocol.Reply, error)
}

// Options configures the driver.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

type page struct {
	location *url.URL
	body     []byte
}

// Driver loads pages with net/http.
type Driver struct {
	pub       Publisher
	client    *http.Client
	opts      Options
	logger    *zap.Logger
	collector *collector.Collector

	nextID atomic.Int64
	mu     sync.RWMutex
	pages  map[target.ID]*page
}

// New creates a fetch driver publishing events to pub.
func New(pub Publisher, opts Options, logger *zap.Logger) *Driver {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: false,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
	}
	return &Driver{
		pub:       pub,
		client:    client,
		opts:      opts,
		logger:    logger,
		collector: collector.New(),
		pages:     make(map[target.ID]*page),
	}
}

// Open fetches rawURL into a new target. A failed load reports the target
// closed, so the tracker keeps no state for it.
func (d *Driver) Open(ctx context.Context, rawURL string) (_ target.ID, err error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return 0, err
	}

	id := target.ID(d.nextID.Add(1))
	if err := d.publish(ctx, protocol.NavigationStarted{Target: id, FrameDepth: 0}); err != nil {
		return 0, err
	}
	defer func() {
		if err == nil {
			return
		}
		if cerr := d.publish(context.WithoutCancel(ctx), protocol.TargetClosed{Target: id}); cerr != nil {
			d.logger.Warn("failed to release target", zap.Int("target", int(id)), zap.Error(cerr))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if d.opts.UserAgent != "" {
		req.Header.Set("User-Agent", d.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrTargetUnreachable, err)
	}
	defer resp.Body.Close()

	final := resp.Request.URL
	if err := d.publish(ctx, protocol.HeadersReceived{
		Target:       id,
		ResourceKind: target.DocumentLevel,
		URL:          final.String(),
		StatusCode:   resp.StatusCode,
		Headers:      FlattenHeaders(resp.Header),
	}); err != nil {
		return 0, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.opts.MaxBodyBytes))
	if err != nil {
		// a truncated body still yields partial signals
		d.logger.Warn("failed to read document body", zap.String("url", final.String()), zap.Error(err))
	}
	if err := d.publish(ctx, protocol.RequestCompleted{Target: id, URL: final.String(), ResourceKind: "main_frame"}); err != nil {
		return 0, err
	}

	d.mu.Lock()
	d.pages[id] = &page{location: final, body: body}
	d.mu.Unlock()

	d.logger.Debug("page fetched",
		zap.Int("target", int(id)),
		zap.String("url", final.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return id, nil
}

// Collect parses the stored document and runs the page scans.
func (d *Driver) Collect(ctx context.Context, id target.ID) (signal.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return signal.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrTargetUnreachable, err)
	}
	d.mu.RLock()
	p, ok := d.pages[id]
	d.mu.RUnlock()
	if !ok {
		return signal.Snapshot{}, fmt.Errorf("target %d: %w", id, apperrors.ErrTargetUnreachable)
	}

	doc, err := dom.Parse(bytes.NewReader(p.body), p.location.String())
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("target %d: %w: %v", id, apperrors.ErrNoDocument, err)
	}
	return d.collector.Collect(doc), nil
}

// Close forgets the target and reports it closed.
func (d *Driver) Close(ctx context.Context, id target.ID) error {
	d.mu.Lock()
	delete(d.pages, id)
	d.mu.Unlock()
	return d.publish(ctx, protocol.TargetClosed{Target: id})
}

func (d *Driver) publish(ctx context.Context, msg protocol.Message) error {
	if _, err := d.pub.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type(), err)
	}
	return nil
}

// FlattenHeaders converts response headers to protocol headers in name order.
// Repeated headers stay separate entries so the tracker keeps the last one seen.
// Set-Cookie is the exception: its values are joined with newlines, the way
// browsers report them, so every cookie reaches the cookie rule.
func FlattenHeaders(h http.Header) []target.Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]target.Header, 0, len(names))
	for _, name := range names {
		if strings.EqualFold(name, "Set-Cookie") {
			out = append(out, target.Header{Name: name, Value: strings.Join(h[name], "\n")})
			continue
		}
		for _, v := range h[name] {
			out = append(out, target.Header{Name: name, Value: v})
		}
	}
	return out
}
