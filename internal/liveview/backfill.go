package liveview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edge-sentinel/liveview/internal/logger"
	"github.com/edge-sentinel/liveview/internal/metrics"
)

// Backfill fetches the historical-event list once at startup and seeds
// the history buffer with it. Any failure leaves the buffer empty;
// live events will fill it on their own.
type Backfill struct {
	url     string
	client  *http.Client
	history *History
	metrics *metrics.Metrics
}

// eventsResponse is the REST payload shape: events ordered newest
// first.
type eventsResponse struct {
	Events []DetectionEvent `json:"events"`
}

// NewBackfill creates a loader for the given events endpoint.
func NewBackfill(url string, history *History, m *metrics.Metrics) *Backfill {
	return &Backfill{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		history: history,
		metrics: m,
	}
}

// Load performs the one-shot fetch and seeds the buffer. Errors are
// logged and swallowed: backfill is best-effort and never retried.
func (b *Backfill) Load(ctx context.Context) {
	events, err := b.fetch(ctx)
	if err != nil {
		if b.metrics != nil {
			b.metrics.BackfillFailures.Add(1)
		}
		logger.Warn("Backfill", "Historical events unavailable: %v", err)
		return
	}

	// The endpoint returns newest first; Seed reverses so the final
	// in-memory order stays newest first.
	b.history.Seed(events, false)
	if b.metrics != nil {
		b.metrics.BackfillEvents.Add(uint64(len(events)))
	}
	logger.Info("Backfill", "Seeded %d historical events", len(events))
}

func (b *Backfill) fetch(ctx context.Context) ([]DetectionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events endpoint returned status %d", resp.StatusCode)
	}

	var payload eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return payload.Events, nil
}
