package main

import (
	"fmt"
	"strings"

	"github.com/edge-sentinel/liveview/internal/liveview"
	"github.com/edge-sentinel/liveview/internal/logger"
)

// consoleRenderer stands in for the dashboard DOM: it subscribes to
// every notification surface the core exposes and writes them to the
// log.
type consoleRenderer struct{}

func newConsoleRenderer() *consoleRenderer {
	return &consoleRenderer{}
}

// Status renders connection-status transitions.
func (r *consoleRenderer) Status(status, text string) {
	if status == "connected" {
		logger.Info("Render", "Connection: %s", text)
		return
	}
	logger.Warn("Render", "Connection: %s", text)
}

// Views wires the four stats surfaces.
func (r *consoleRenderer) Views() liveview.Views {
	return liveview.Views{
		Counters: func(v liveview.CounterValues) {
			logger.Info("Render", "Detections: %d  Alerts: %d  Frame: %d  Uptime: %s",
				v.TotalDetections, v.AlertsSent, v.FrameNumber, v.Uptime)
		},
		FPS: func(fps float64) {
			logger.Info("Render", "FPS: %.1f", fps)
		},
		VotingRow: func(row liveview.VotingRow) {
			logger.Info("Render", "Voting [%s] %d/%d (%.0f%%, %s) window %d/%d",
				row.ClassName, row.CurrentVotes, row.VotesRequired,
				row.Percentage, row.Color, row.HistoryLength, row.WindowSize)
		},
		Motion: func(m liveview.MotionView) {
			state := "idle"
			if m.Detected {
				state = "detected"
			}
			logger.Info("Render", "Motion: %s (area %.0f, contours %d)", state, m.Area, m.Contours)
		},
	}
}

// EventList renders the event history after each accepted admission.
func (r *consoleRenderer) EventList(events []liveview.DetectionEvent) {
	if len(events) == 0 {
		return
	}
	latest := events[0]
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%.2f)", latest.ClassName, latest.Confidence)
	if latest.Zone != "" {
		fmt.Fprintf(&b, " in %s", latest.Zone)
	}
	logger.Info("Render", "Event: %s  [%d in history]", b.String(), len(events))
}
