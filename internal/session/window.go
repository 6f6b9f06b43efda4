package session

import (
	"strings"
	"sync"
	"time"
)

// ReservedPrefix marks system lines (e.g. "[Meeting Recording Started]")
// injected into the transcript stream. They are broadcast like speech but
// never enter the batching window.
const ReservedPrefix = "["

// Segment is one final transcript line buffered for extraction. Timestamp is
// the client's capture time, carried verbatim.
type Segment struct {
	Speaker    string
	Text       string
	Timestamp  string
	CapturedAt time.Time
}

// WindowConfig holds the flush thresholds. Both come from configuration, not
// code.
type WindowConfig struct {
	MaxSegments   int
	FlushInterval time.Duration
}

// Window buffers final segments between extraction flushes. It is safe for
// concurrent use; Drain is atomic with respect to Offer, so no segment is
// lost or duplicated across a flush.
type Window struct {
	mu        sync.Mutex
	cfg       WindowConfig
	segments  []Segment
	lastFlush time.Time
}

func NewWindow(cfg WindowConfig, now time.Time) *Window {
	return &Window{
		cfg:       cfg,
		lastFlush: now,
	}
}

// Offer appends a final segment. Empty lines and lines starting with the
// reserved prefix are rejected and do not count toward the flush threshold.
func (w *Window) Offer(seg Segment) bool {
	if seg.Text == "" || strings.HasPrefix(seg.Text, ReservedPrefix) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.segments = append(w.segments, seg)
	return true
}

// ShouldFlush reports whether the buffer is ready for extraction: the count
// threshold is reached, or the flush interval has elapsed since the last
// drain and there is something buffered.
func (w *Window) ShouldFlush(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.segments) == 0 {
		return false
	}
	if len(w.segments) >= w.cfg.MaxSegments {
		return true
	}
	return now.Sub(w.lastFlush) >= w.cfg.FlushInterval
}

// Drain atomically empties the buffer and resets the flush timer. The timer
// resets even when the subsequent extraction fails; a lost batch does not
// shorten the next interval.
func (w *Window) Drain(now time.Time) []Segment {
	w.mu.Lock()
	defer w.mu.Unlock()
	drained := w.segments
	w.segments = nil
	w.lastFlush = now
	return drained
}

// Len returns the number of buffered segments.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.segments)
}

// Reset discards the buffer and restarts the flush timer.
func (w *Window) Reset(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.segments = nil
	w.lastFlush = now
}
