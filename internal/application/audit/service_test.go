package audit_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/application/tracker"
	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sourceFunc func(ctx context.Context, id target.ID) (signal.Snapshot, error)

func (f sourceFunc) Collect(ctx context.Context, id target.ID) (signal.Snapshot, error) {
	return f(ctx, id)
}

func staticSource(signals ...signal.Signal) signal.Source {
	return sourceFunc(func(context.Context, target.ID) (signal.Snapshot, error) {
		return signal.Snapshot{
			Page:    signal.Page{URL: "https://example.com/login"},
			Signals: signals,
		}, nil
	})
}

func httpsStore(t *testing.T) *tracker.Store {
	t.Helper()
	store := tracker.NewStore()
	store.OnNavigationStart(1, 0)
	store.OnMainFrameHeaders(1, "https://example.com/login", 200, nil)
	return store
}

func findingIDs(findings []finding.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.ID)
	}
	return out
}

func TestAudit_CombinesHeaderAndContentRules(t *testing.T) {
	t.Parallel()

	svc := audit.NewService(httpsStore(t), staticSource(
		signal.Signal{Kind: signal.KindPasswordAutocomplete, Evidence: "form > input"},
	), audit.Config{}, zaptest.NewLogger(t))

	report, err := svc.Audit(t.Context(), 1)
	require.NoError(t, err)
	require.Empty(t, report.SignalError)
	require.False(t, report.Degraded())
	require.Equal(t, "https://example.com/login", report.URL)
	require.Equal(t, "https://example.com", report.Origin)
	require.NotEqual(t, [16]byte{}, [16]byte(report.ID))

	require.Equal(t, []string{
		"CSP_MISSING",
		"HSTS_MISSING",
		"CLICKJACKING_RISK",
		"NOSNIFF_MISSING",
		"REFERRER_POLICY_MISSING",
		"PERMISSIONS_POLICY_MISSING",
		"PW_AUTOCOMPLETE",
	}, findingIDs(report.Findings))

	require.Equal(t, finding.Summary{"Critical": 0, "High": 1, "Medium": 2, "Low": 3, "Info": 1}, report.Summary)
}

func TestAudit_UnreachableTargetDegrades(t *testing.T) {
	t.Parallel()

	unreachable := sourceFunc(func(context.Context, target.ID) (signal.Snapshot, error) {
		return signal.Snapshot{}, fmt.Errorf("tab 1: %w", apperrors.ErrTargetUnreachable)
	})
	svc := audit.NewService(httpsStore(t), unreachable, audit.Config{}, zaptest.NewLogger(t))

	report, err := svc.Audit(t.Context(), 1)
	require.NoError(t, err)
	require.True(t, report.Degraded())
	require.Contains(t, report.SignalError, "target could not be reached")
	require.Len(t, report.Findings, 6)
	require.NotContains(t, findingIDs(report.Findings), "PW_AUTOCOMPLETE")
}

func TestAudit_NoSignalSource(t *testing.T) {
	t.Parallel()

	svc := audit.NewService(httpsStore(t), nil, audit.Config{}, nil)
	report, err := svc.Audit(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, apperrors.ErrSignalsUnavailable.Error(), report.SignalError)
	require.Len(t, report.Findings, 6)
}

func TestAudit_SignalTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var finished sync.WaitGroup
	finished.Add(1)
	stuck := sourceFunc(func(context.Context, target.ID) (signal.Snapshot, error) {
		defer finished.Done()
		<-release
		return signal.Snapshot{}, nil
	})
	t.Cleanup(func() {
		close(release)
		finished.Wait()
	})

	svc := audit.NewService(httpsStore(t), stuck, audit.Config{SignalTimeout: 30 * time.Millisecond}, zaptest.NewLogger(t))

	start := time.Now()
	report, err := svc.Audit(t.Context(), 1)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
	require.True(t, report.Degraded())
	require.Contains(t, report.SignalError, context.DeadlineExceeded.Error())
}

func TestAudit_UnknownTarget(t *testing.T) {
	t.Parallel()

	svc := audit.NewService(tracker.NewStore(), staticSource(), audit.Config{}, nil)
	report, err := svc.Audit(t.Context(), 5)
	require.NoError(t, err)
	require.Empty(t, report.Findings)
	require.Equal(t, "https://example.com/login", report.URL)
}

func TestAudit_InvalidTarget(t *testing.T) {
	t.Parallel()

	svc := audit.NewService(tracker.NewStore(), nil, audit.Config{}, nil)
	_, err := svc.Audit(t.Context(), -1)
	require.ErrorIs(t, err, apperrors.ErrInvalidTarget)
}

func TestAudit_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	svc := audit.NewService(httpsStore(t), staticSource(), audit.Config{}, nil)
	_, err := svc.Audit(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAudit_ExtendedRules(t *testing.T) {
	t.Parallel()

	src := staticSource(
		signal.Signal{Kind: signal.KindTabnabbing, Href: "https://x", Evidence: "a"},
		signal.Signal{Kind: signal.KindMixedContent, Element: "img", Attr: "src", URL: "http://x/a.png", Evidence: "img"},
	)
	base := audit.NewService(httpsStore(t), src, audit.Config{}, nil)
	extended := audit.NewService(httpsStore(t), src, audit.Config{Rules: checker.Options{Extended: true}}, nil)

	r1, err := base.Audit(t.Context(), 1)
	require.NoError(t, err)
	require.NotContains(t, findingIDs(r1.Findings), "MIXED_CONTENT")

	r2, err := extended.Audit(t.Context(), 1)
	require.NoError(t, err)
	ids := findingIDs(r2.Findings)
	require.Contains(t, ids, "MIXED_CONTENT")
	require.Contains(t, ids, "TABNABBING")
	// MIXED_CONTENT is High and must rank ahead of every Medium finding.
	require.Equal(t, finding.SeverityHigh, r2.Findings[0].Severity)
}

func TestEvaluate_HTTPPage(t *testing.T) {
	t.Parallel()

	state := target.State{MainFrame: &target.MainFrame{
		URL: "http://example.com",
		Headers: map[string]string{
			"content-security-policy": "default-src 'self'",
			"x-frame-options":         "DENY",
			"x-content-type-options":  "nosniff",
			"referrer-policy":         "no-referrer",
			"permissions-policy":      "camera=()",
		},
	}}
	findings := audit.Evaluate(state, nil, checker.Options{})
	require.Equal(t, []string{"HTTP_IN_USE"}, findingIDs(findings))
}

type fakeDriver struct {
	openErr error
	nextID  atomic.Int64
	closed  atomic.Int64
	store   *tracker.Store
}

func (d *fakeDriver) Open(_ context.Context, rawURL string) (target.ID, error) {
	if d.openErr != nil {
		return 0, d.openErr
	}
	id := target.ID(d.nextID.Add(1))
	d.store.OnNavigationStart(id, 0)
	d.store.OnMainFrameHeaders(id, rawURL, 200, []target.Header{{Name: "Content-Security-Policy", Value: "script-src 'unsafe-eval'"}})
	return id, nil
}

func (d *fakeDriver) Close(_ context.Context, id target.ID) error {
	d.closed.Add(1)
	d.store.Remove(id)
	return nil
}

func (d *fakeDriver) Collect(context.Context, target.ID) (signal.Snapshot, error) {
	return signal.Snapshot{}, nil
}

func TestScanner(t *testing.T) {
	t.Parallel()

	store := tracker.NewStore()
	driver := &fakeDriver{store: store}
	scanner := audit.NewScanner(driver, audit.NewService(store, nil, audit.Config{}, nil), zaptest.NewLogger(t))

	report, err := scanner.Scan(t.Context(), "https://example.com/")
	require.NoError(t, err)
	require.Empty(t, report.SignalError)
	require.Contains(t, findingIDs(report.Findings), "CSP_UNSAFE")
	require.EqualValues(t, 1, driver.closed.Load())
	require.Equal(t, 0, store.Len())
}

func TestScanner_OpenError(t *testing.T) {
	t.Parallel()

	boom := errors.New("dial tcp: connection refused")
	driver := &fakeDriver{store: tracker.NewStore(), openErr: boom}
	scanner := audit.NewScanner(driver, audit.NewService(driver.store, nil, audit.Config{}, nil), nil)

	_, err := scanner.Scan(t.Context(), "https://down.example.com/")
	require.ErrorIs(t, err, boom)
	require.EqualValues(t, 0, driver.closed.Load())
}
