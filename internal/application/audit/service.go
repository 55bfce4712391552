// Package audit runs the audit pipeline for a target: it gathers the tracked
// state and the page signals, evaluates both rule tables and normalizes the result.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StateSource returns tracked target state. It must never block on the target.
type StateSource interface {
	State(id target.ID) target.State
}

// Config tunes the audit service.
type Config struct {
	Rules         checker.Options
	SignalTimeout time.Duration
}

// Service provides application-level audit operations
type Service struct {
	states  StateSource
	signals signal.Source
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new audit service. signals may be nil; audits then run on
// headers only unless a source is passed to AuditWith.
func NewService(states StateSource, signals signal.Source, cfg Config, logger *zap.Logger) *Service {
	if cfg.SignalTimeout <= 0 {
		cfg.SignalTimeout = constants.DefaultSignalTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		states:  states,
		signals: signals,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Audit evaluates a target with the service's signal source.
func (s *Service) Audit(ctx context.Context, id target.ID) (*Report, error) {
	return s.AuditWith(ctx, id, s.signals)
}

// AuditWith evaluates a target, collecting signals from src. The state snapshot and
// the signal collection are awaited concurrently. A failed or timed out collection
// is recorded on the report and the audit continues with header rules only.
func (s *Service) AuditWith(ctx context.Context, id target.ID, src signal.Source) (*Report, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("audit target %d: %w", id, apperrors.ErrInvalidTarget)
	}

	var (
		state     target.State
		snap      signal.Snapshot
		signalErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state = s.states.State(id)
		return nil
	})
	g.Go(func() error {
		snap, signalErr = s.collect(gctx, id, src)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit target %d: %w", id, err)
	}

	findings := Evaluate(state, snap.Signals, s.cfg.Rules)

	report := &Report{
		ID:        uuid.New(),
		Target:    id,
		URL:       pageURL(state, snap),
		ScannedAt: s.now().UTC(),
		Findings:  findings,
		Summary:   finding.Summarize(findings),
	}
	report.Origin = originOf(report.URL)
	if signalErr != nil {
		report.SignalError = signalErr.Error()
		s.logger.Warn("audit degraded to header rules",
			zap.Int("target", int(id)),
			zap.Error(signalErr),
		)
	}

	s.logger.Info("audit completed",
		zap.Int("target", int(id)),
		zap.String("url", report.URL),
		zap.Int("findings", len(findings)),
	)
	return report, nil
}

// collect never outlives the signal timeout, even when src ignores ctx.
func (s *Service) collect(ctx context.Context, id target.ID, src signal.Source) (signal.Snapshot, error) {
	if src == nil {
		return signal.Snapshot{}, apperrors.ErrSignalsUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SignalTimeout)
	defer cancel()

	type result struct {
		snap signal.Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := src.Collect(ctx, id)
		done <- result{snap: snap, err: err}
	}()

	select {
	case r := <-done:
		return r.snap, r.err
	case <-ctx.Done():
		return signal.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrTargetUnreachable, ctx.Err())
	}
}

// Evaluate runs both rule tables and normalizes the combined findings.
func Evaluate(state target.State, signals []signal.Signal, opts checker.Options) []finding.Finding {
	raw := checker.EvaluateHeaders(state.MainFrame, opts)
	raw = append(raw, checker.EvaluateSignals(signals, opts)...)
	return finding.Normalize(raw)
}

func pageURL(state target.State, snap signal.Snapshot) string {
	if state.MainFrame != nil && state.MainFrame.URL != "" {
		return state.MainFrame.URL
	}
	return snap.Page.URL
}
