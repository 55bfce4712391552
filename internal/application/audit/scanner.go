package audit

import (
	"context"
	"fmt"

	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	"go.uber.org/zap"
)

// Driver loads pages into targets. While loading it publishes navigation, header
// and request events so the tracker holds the target's state before Open returns.
type Driver interface {
	signal.Source
	Open(ctx context.Context, rawURL string) (target.ID, error)
	Close(ctx context.Context, id target.ID) error
}

// Scanner audits URLs end to end: open a target, audit it, close it.
type Scanner struct {
	driver  Driver
	service *Service
	logger  *zap.Logger
}

// NewScanner wires a driver to an audit service.
func NewScanner(driver Driver, service *Service, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{driver: driver, service: service, logger: logger}
}

// Scan loads rawURL and audits it. Load failures are returned as errors; signal
// failures after a successful load only degrade the report.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*Report, error) {
	id, err := s.driver.Open(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rawURL, err)
	}
	defer func() {
		if cerr := s.driver.Close(context.WithoutCancel(ctx), id); cerr != nil {
			s.logger.Warn("failed to close target", zap.Int("target", int(id)), zap.Error(cerr))
		}
	}()

	return s.service.AuditWith(ctx, id, s.driver)
}
