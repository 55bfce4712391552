package tracker

import "github.com/khanhnv2901/seca-pagescan/internal/domain/target"

// requestLog is a fixed-capacity FIFO ring of completed requests. It is not
// safe for concurrent use; the owning entry serializes access.
type requestLog struct {
	entries  []target.RequestEntry
	capacity int
	head     int // index of the next write once the ring is full
}

func newRequestLog(capacity int) *requestLog {
	return &requestLog{
		entries:  make([]target.RequestEntry, 0, min(capacity, 32)),
		capacity: capacity,
	}
}

func (l *requestLog) append(e target.RequestEntry) {
	if l.capacity <= 0 {
		return
	}
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, e)
		return
	}
	// full: overwrite the oldest entry
	l.entries[l.head] = e
	l.head = (l.head + 1) % l.capacity
}

// snapshot returns the entries oldest first in a fresh slice.
func (l *requestLog) snapshot() []target.RequestEntry {
	out := make([]target.RequestEntry, len(l.entries))
	if len(l.entries) < l.capacity {
		copy(out, l.entries)
		return out
	}
	n := copy(out, l.entries[l.head:])
	copy(out[n:], l.entries[:l.head])
	return out
}
