package liveview

import (
	"sync"

	"github.com/edge-sentinel/liveview/internal/metrics"
)

// DefaultHistoryCapacity bounds the in-memory event list.
const DefaultHistoryCapacity = 20

// History is a bounded, ordered, deduplicated store of recent
// detection events. Events arrive from two independent sources (the
// one-shot backfill and the live channel); a seen-key set rejects the
// overlap between them. Order is strictly by insertion time among
// accepted events, newest first, so eviction is FIFO by admission and
// never consults the timestamp field.
type History struct {
	mu       sync.Mutex
	capacity int
	events   []DetectionEvent
	seen     map[string]struct{}
	notify   func([]DetectionEvent)
	metrics  *metrics.Metrics
}

// NewHistory creates a History with the given capacity. notify is
// invoked with a snapshot of the event list after every accepted
// admission; duplicates trigger no notification. A nil notify is
// allowed. capacity values below 1 fall back to the default.
func NewHistory(capacity int, notify func([]DetectionEvent), m *metrics.Metrics) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		seen:     make(map[string]struct{}),
		notify:   notify,
		metrics:  m,
	}
}

// Admit inserts the event at the front of the list unless an event
// with the same key was already admitted. Admitting the same logical
// event twice is a no-op beyond the first. When the list exceeds
// capacity the oldest-admitted entry falls off the back.
func (h *History) Admit(event DetectionEvent) bool {
	h.mu.Lock()
	key := event.Key()
	if _, dup := h.seen[key]; dup {
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.DuplicatesSuppressed.Add(1)
		}
		return false
	}
	h.seen[key] = struct{}{}
	h.events = append([]DetectionEvent{event}, h.events...)
	if len(h.events) > h.capacity {
		evicted := h.events[len(h.events)-1]
		delete(h.seen, evicted.Key())
		h.events = h.events[:h.capacity]
	}
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.EventsAdmitted.Add(1)
	}
	if h.notify != nil {
		h.notify(snapshot)
	}
	return true
}

// Seed admits a batch of historical events. Events must end up being
// admitted oldest first so that front insertion leaves the list newest
// first; callers holding newest-first data pass oldestFirst=false and
// the batch is reversed here.
func (h *History) Seed(events []DetectionEvent, oldestFirst bool) {
	if !oldestFirst {
		reversed := make([]DetectionEvent, len(events))
		for i, e := range events {
			reversed[len(events)-1-i] = e
		}
		events = reversed
	}
	for _, e := range events {
		h.Admit(e)
	}
}

// Events returns a copy of the current list, newest first.
func (h *History) Events() []DetectionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Len returns the number of stored events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (h *History) snapshotLocked() []DetectionEvent {
	out := make([]DetectionEvent, len(h.events))
	copy(out, h.events)
	return out
}
