package liveview

import (
	"encoding/json"

	"github.com/edge-sentinel/liveview/internal/logger"
	"github.com/edge-sentinel/liveview/internal/metrics"
)

// envelope is the discriminated frame shape on the push channel.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Router classifies inbound text frames and dispatches them to the
// history buffer or the stats projector. Frames that do not parse are
// discarded, never fatal: the channel also carries non-JSON control
// traffic (keepalive echoes) that must not drop the connection.
type Router struct {
	history   *History
	projector *Projector
	metrics   *metrics.Metrics
}

// NewRouter creates a router feeding the given buffer and projector.
func NewRouter(history *History, projector *Projector, m *metrics.Metrics) *Router {
	return &Router{history: history, projector: projector, metrics: m}
}

// Route handles one raw inbound frame. Unrecognized or missing type
// discriminants are ignored silently; malformed payloads are logged at
// debug and dropped with zero state mutation.
func (r *Router) Route(frame []byte) {
	if r.metrics != nil {
		r.metrics.FramesReceived.Add(1)
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		r.discard("frame", err)
		return
	}

	switch env.Type {
	case "stats":
		var snapshot StatsSnapshot
		if err := json.Unmarshal(env.Data, &snapshot); err != nil {
			r.discard("stats payload", err)
			return
		}
		r.projector.Project(snapshot)
		if r.metrics != nil {
			r.metrics.StatsApplied.Add(1)
		}

	case "event":
		var event DetectionEvent
		if err := json.Unmarshal(env.Data, &event); err != nil {
			r.discard("event payload", err)
			return
		}
		if event.ClassName == "" {
			event.ClassName = "Unknown"
		}
		r.history.Admit(event)

	default:
		// Control frames and future message types pass through here.
	}
}

func (r *Router) discard(what string, err error) {
	if r.metrics != nil {
		r.metrics.ParseErrors.Add(1)
	}
	logger.Debug("Router", "Discarding unparseable %s: %v", what, err)
}
