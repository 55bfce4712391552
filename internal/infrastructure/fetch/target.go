package fetch

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
)

// NormalizeURL turns user input into an absolute http(s) URL.
// This handles various input formats:
//   - example.com
//   - http://example.com
//   - https://example.com:443/path
//   - example.com:8080/login
//
// Inputs without a scheme are assumed to be HTTPS.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", apperrors.ErrInvalidInput)
	}

	parsed, err := url.Parse(raw)
	// A missing scheme, or a "scheme" that is really a host ("example.com:8080"),
	// means the input needs one prepended.
	if err != nil || parsed.Scheme == "" || parsed.Host == "" && parsed.Opaque != "" || strings.Contains(parsed.Scheme, ".") {
		parsed, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	}

	switch parsed.Scheme = strings.ToLower(parsed.Scheme); parsed.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", apperrors.ErrInvalidInput, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", apperrors.ErrInvalidInput, raw)
	}
	return parsed, nil
}
