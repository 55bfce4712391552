package cmd

import (
	"errors"
	"fmt"

	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
)

// Process exit codes.
const (
	exitFailure  = 1
	exitUsage    = 2
	exitFindings = 3
)

// FindingsThresholdError reports that a scan produced findings at or above the
// --fail-on severity.
type FindingsThresholdError struct {
	Threshold string
	Count     int
}

func (e *FindingsThresholdError) Error() string {
	return fmt.Sprintf("%d finding(s) at or above %s", e.Count, e.Threshold)
}

// ScanFailedError reports URLs that could not be loaded.
type ScanFailedError struct {
	Failed int
	Total  int
}

func (e *ScanFailedError) Error() string {
	if e.Total == 1 {
		return "scan failed"
	}
	return fmt.Sprintf("%d of %d scans failed", e.Failed, e.Total)
}

func exitCode(err error) int {
	var threshold *FindingsThresholdError
	switch {
	case errors.As(err, &threshold):
		return exitFindings
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrUnsupportedMode),
		errors.Is(err, apperrors.ErrUnsupportedFormat):
		return exitUsage
	default:
		return exitFailure
	}
}
