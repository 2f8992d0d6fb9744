package liveview

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/edge-sentinel/liveview/internal/logger"
	"github.com/edge-sentinel/liveview/internal/metrics"
)

// Connection defaults, matching the dashboard the producer serves.
const (
	DefaultReconnectDelay    = 3000 * time.Millisecond
	DefaultKeepaliveInterval = 30 * time.Second
	DefaultKeepaliveToken    = "ping"
)

// StatusFunc receives connection-status transitions for the rendering
// layer: ("connected","Connected"), ("error","Disconnected") and
// ("error","Connection Error").
type StatusFunc func(status, text string)

// Conn owns the push-channel lifecycle: dialing, the read pump, the
// keepalive ticker and the fixed-delay reconnect timer. Reconnection
// is perpetual: there is no backoff growth and no retry cap, so the
// channel is permanently self-healing until Shutdown.
type Conn struct {
	url               string
	reconnectDelay    time.Duration
	keepaliveInterval time.Duration
	dialer            *websocket.Dialer
	onFrame           func([]byte)
	onStatus          StatusFunc
	metrics           *metrics.Metrics

	mu         sync.Mutex
	state      ConnectionState
	ws         *websocket.Conn
	retryTimer *time.Timer
	stop       chan struct{}
	stopped    bool
	keepalive  sync.Once
	wg         sync.WaitGroup

	// wmu serializes writers; gorilla permits one concurrent writer.
	wmu sync.Mutex
}

// ConnOptions configures a Conn. Zero durations fall back to the
// defaults above.
type ConnOptions struct {
	URL               string
	ReconnectDelay    time.Duration
	KeepaliveInterval time.Duration
	OnFrame           func([]byte)
	OnStatus          StatusFunc
	Metrics           *metrics.Metrics
}

// NewConn creates a connection manager. The channel stays closed until
// the first Connect call.
func NewConn(opts ConnOptions) *Conn {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = DefaultKeepaliveInterval
	}
	return &Conn{
		url:               opts.URL,
		reconnectDelay:    opts.ReconnectDelay,
		keepaliveInterval: opts.KeepaliveInterval,
		dialer:            &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		onFrame:           opts.OnFrame,
		onStatus:          opts.OnStatus,
		metrics:           opts.Metrics,
		state:             StateIdle,
		stop:              make(chan struct{}),
	}
}

// Connect opens the channel unless an attempt is already pending or a
// channel is already open; concurrent calls collapse into at most one
// active channel. The first call also starts the keepalive ticker,
// which runs for the life of the Conn and no-ops while closed.
func (c *Conn) Connect() {
	c.mu.Lock()
	if c.stopped || c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.keepalive.Do(func() {
		c.wg.Add(1)
		go c.keepaliveLoop()
	})
	c.wg.Add(1)
	c.mu.Unlock()

	go c.dial()
}

// State returns the current connection state.
func (c *Conn) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Shutdown cancels the reconnect timer and the keepalive ticker,
// closes the channel and waits for the pumps to drain. Safe to call
// more than once.
func (c *Conn) Shutdown() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	close(c.stop)
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		c.wmu.Lock()
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wmu.Unlock()
		_ = ws.Close()
	}
	c.wg.Wait()
}

func (c *Conn) dial() {
	defer c.wg.Done()

	ws, resp, err := c.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		logger.Warn("Conn", "Dial %s failed: %v", c.url, err)
		c.notify("error", "Connection Error")
		c.closed()
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	c.state = StateConnected
	c.wg.Add(1)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Connects.Add(1)
	}
	logger.Info("Conn", "Channel open: %s", c.url)
	c.notify("connected", "Connected")

	go c.readLoop(ws)
}

// readLoop delivers inbound frames until the channel dies. A transport
// error surfaces as "Connection Error" before the close transition; a
// clean close goes straight to "Disconnected". Either way reconnection
// is driven solely from the close path.
func (c *Conn) readLoop(ws *websocket.Conn) {
	defer c.wg.Done()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			clean := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			if !clean && !c.isStopped() {
				logger.Warn("Conn", "Channel error: %v", err)
				c.notify("error", "Connection Error")
			}
			break
		}
		if c.onFrame != nil {
			c.onFrame(data)
		}
	}

	_ = ws.Close()
	c.closed()
}

// closed records the close transition and schedules exactly one
// reconnect attempt after the fixed delay. During Shutdown the
// transition is silent and nothing is rescheduled.
func (c *Conn) closed() {
	c.mu.Lock()
	c.ws = nil
	c.state = StateDisconnected
	stopped := c.stopped
	c.mu.Unlock()

	if stopped {
		return
	}

	c.notify("error", "Disconnected")

	c.mu.Lock()
	if !c.stopped && c.retryTimer == nil {
		c.retryTimer = time.AfterFunc(c.reconnectDelay, func() {
			c.mu.Lock()
			c.retryTimer = nil
			c.mu.Unlock()
			c.Connect()
		})
		if c.metrics != nil {
			c.metrics.Reconnects.Add(1)
		}
		logger.Info("Conn", "Reconnecting in %v", c.reconnectDelay)
	}
	c.mu.Unlock()
}

func (c *Conn) keepaliveLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			ws := c.ws
			open := c.state == StateConnected
			c.mu.Unlock()

			if !open || ws == nil {
				// Closed channel: the tick is a no-op.
				continue
			}

			c.wmu.Lock()
			err := ws.WriteMessage(websocket.TextMessage, []byte(DefaultKeepaliveToken))
			c.wmu.Unlock()
			if err != nil {
				// The read pump will observe the failure and close.
				logger.Debug("Conn", "Keepalive write failed: %v", err)
				continue
			}
			if c.metrics != nil {
				c.metrics.KeepalivesSent.Add(1)
			}
		}
	}
}

func (c *Conn) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Conn) notify(status, text string) {
	if c.onStatus != nil {
		c.onStatus(status, text)
	}
}
