// Package tracker keeps the per-target observation state fed by network events.
//
// A Store is created by the application container and owns every TargetState.
// Callers only see deep copies. Events for one target are applied one at a time;
// events for different targets do not contend beyond the brief map lookup.
package tracker

import (
	"strings"
	"sync"

	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	"go.uber.org/zap"
)

type entry struct {
	mu        sync.Mutex
	mainFrame *target.MainFrame
	log       *requestLog
}

// Store holds tracked state for every observed target.
type Store struct {
	mu       sync.RWMutex
	targets  map[target.ID]*entry
	capacity int
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for rejected events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCapacity overrides the request log bound. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		targets:  make(map[target.ID]*entry),
		capacity: constants.RequestLogCapacity,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnNavigationStart resets the target when a top-level navigation begins.
// Sub-frame navigations (depth > 0) leave the state untouched.
func (s *Store) OnNavigationStart(id target.ID, frameDepth int) {
	if !s.accept(id, "navigation_started") || frameDepth != 0 {
		return
	}
	e := s.entry(id)
	e.mu.Lock()
	e.mainFrame = nil
	e.log = newRequestLog(s.capacity)
	e.mu.Unlock()
}

// OnMainFrameHeaders replaces the target's main frame metadata. Header names are
// lower-cased; when a name repeats the last value wins.
func (s *Store) OnMainFrameHeaders(id target.ID, url string, statusCode int, headers []target.Header) {
	if !s.accept(id, "headers_received") {
		return
	}
	mf := &target.MainFrame{
		URL:        url,
		StatusCode: statusCode,
		Headers:    make(map[string]string, len(headers)),
	}
	for _, h := range headers {
		mf.Headers[strings.ToLower(h.Name)] = h.Value
	}

	e := s.entry(id)
	e.mu.Lock()
	e.mainFrame = mf
	e.mu.Unlock()
}

// OnRequestCompleted appends a completed load to the target's bounded request log.
func (s *Store) OnRequestCompleted(id target.ID, url, resourceType string) {
	if !s.accept(id, "request_completed") {
		return
	}
	e := s.entry(id)
	e.mu.Lock()
	e.log.append(target.RequestEntry{URL: url, ResourceType: resourceType})
	e.mu.Unlock()
}

// State returns a snapshot of the target, or the empty state if it was never observed.
func (s *Store) State(id target.ID) target.State {
	s.mu.RLock()
	e, ok := s.targets[id]
	s.mu.RUnlock()
	if !ok {
		return target.Empty()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	st := target.State{MainFrame: e.mainFrame, RequestLog: e.log.snapshot()}
	return st.Clone()
}

// Remove forgets a target, typically after it was closed.
func (s *Store) Remove(id target.ID) {
	s.mu.Lock()
	delete(s.targets, id)
	s.mu.Unlock()
}

// Len reports how many targets are tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.targets)
}

// Targets lists tracked target ids in no particular order.
func (s *Store) Targets() []target.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]target.ID, 0, len(s.targets))
	for id := range s.targets {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) accept(id target.ID, event string) bool {
	if id.Valid() {
		return true
	}
	s.logger.Debug("ignoring event for invalid target",
		zap.String("event", event),
		zap.Int("target", int(id)),
	)
	return false
}

// entry returns the target's entry, creating it on first use.
func (s *Store) entry(id target.ID) *entry {
	s.mu.RLock()
	e, ok := s.targets[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.targets[id]; ok {
		return e
	}
	e = &entry{log: newRequestLog(s.capacity)}
	s.targets[id] = e
	return e
}
