package liveview

import (
	"context"
	"time"

	"github.com/edge-sentinel/liveview/internal/metrics"
)

// Client wires the live-view core together: one history buffer, one
// projector, one router and one connection manager, constructed
// exactly once and owned here rather than living as package globals.
type Client struct {
	history   *History
	projector *Projector
	router    *Router
	conn      *Conn
	backfill  *Backfill
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// ChannelURL is the websocket endpoint of the push channel.
	ChannelURL string
	// EventsURL is the REST endpoint for the one-shot backfill.
	EventsURL string
	// HistoryCapacity bounds the event list; <1 means the default.
	HistoryCapacity int
	// ReconnectDelay and KeepaliveInterval override the connection
	// defaults; zero keeps them.
	ReconnectDelay    time.Duration
	KeepaliveInterval time.Duration

	// Status receives connection-status transitions.
	Status StatusFunc
	// Views receives the four stats surfaces.
	Views Views
	// EventList receives the ordered event list after each accepted
	// admission, newest first.
	EventList func([]DetectionEvent)

	Metrics *metrics.Metrics
}

// NewClient constructs the client graph.
func NewClient(opts ClientOptions) *Client {
	history := NewHistory(opts.HistoryCapacity, opts.EventList, opts.Metrics)
	projector := NewProjector(opts.Views)
	router := NewRouter(history, projector, opts.Metrics)

	conn := NewConn(ConnOptions{
		URL:               opts.ChannelURL,
		ReconnectDelay:    opts.ReconnectDelay,
		KeepaliveInterval: opts.KeepaliveInterval,
		OnFrame:           router.Route,
		OnStatus:          opts.Status,
		Metrics:           opts.Metrics,
	})

	return &Client{
		history:   history,
		projector: projector,
		router:    router,
		conn:      conn,
		backfill:  NewBackfill(opts.EventsURL, history, opts.Metrics),
	}
}

// Run seeds the buffer from the history endpoint, then opens the push
// channel. Backfill completes before the first connect so the live
// stream always lands on top of the seeded history.
func (c *Client) Run(ctx context.Context) {
	c.backfill.Load(ctx)
	c.conn.Connect()
}

// Shutdown tears the connection down: both timers cancelled, channel
// closed.
func (c *Client) Shutdown() {
	c.conn.Shutdown()
}

// History exposes the event buffer, newest first.
func (c *Client) History() []DetectionEvent {
	return c.history.Events()
}

// State reports the current connection state.
func (c *Client) State() ConnectionState {
	return c.conn.State()
}
