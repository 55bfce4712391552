package fetch

import (
	"context"
	"fmt"

	"github.com/khanhnv2901/seca-pagescan/internal/collector"
	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/target"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
)

// StaticPage is a signal source over a document snapshot supplied by the caller,
// e.g. HTML captured by a browser extension. It answers for any target.
type StaticPage struct {
	URL  string
	HTML string
}

// Collect parses the snapshot and runs the page scans.
func (p StaticPage) Collect(ctx context.Context, _ target.ID) (signal.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return signal.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrTargetUnreachable, err)
	}
	doc, err := dom.ParseString(p.HTML, p.URL)
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrNoDocument, err)
	}
	return collector.Collect(doc), nil
}
