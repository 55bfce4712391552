package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultFilePerm is the default permission used when writing report files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// RequestLogCapacity bounds the per-target log of completed subresource loads.
	RequestLogCapacity = 300
	// DefaultMaxBodyBytes caps how much of a fetched document is kept for signal collection.
	DefaultMaxBodyBytes = 5 << 20
)

const (
	// DefaultRequestTimeout bounds a single page fetch.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultSignalTimeout bounds how long an audit waits for signal collection before
	// treating the target as unreachable.
	DefaultSignalTimeout = 5 * time.Second
	// DefaultBrowserSettle is how long the browser driver waits after load before
	// snapshotting the document.
	DefaultBrowserSettle = 500 * time.Millisecond
)
