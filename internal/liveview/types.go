package liveview

import (
	"fmt"
	"strconv"
)

// ConnectionState tracks the push-channel lifecycle. There is exactly
// one instance per Client, mutated only by the connection manager.
type ConnectionState int

const (
	StateIdle ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

// String returns the display name of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// DetectionEvent mirrors the JSON shape emitted by the detection
// pipeline, both on the live channel and from the history endpoint.
// Timestamp stays a raw ISO-8601 string: the producer serializes
// naive datetimes, which do not round-trip through time.Time.
type DetectionEvent struct {
	ID          *int64  `json:"id,omitempty"`
	ClassName   string  `json:"class_name"`
	Confidence  float64 `json:"confidence"`
	Timestamp   string  `json:"timestamp"`
	FrameNumber int     `json:"frame_number"`
	Zone        string  `json:"zone,omitempty"`
}

// Key derives the dedupe identity for the event. A persisted row id is
// authoritative when present; otherwise identity is the same tuple the
// event store enforces uniqueness on.
func (e DetectionEvent) Key() string {
	if e.ID != nil {
		return "id:" + strconv.FormatInt(*e.ID, 10)
	}
	return fmt.Sprintf("%s|%s|%d|%s", e.Timestamp, e.ClassName, e.FrameNumber, e.Zone)
}

// VotingClassStatus mirrors one entry of the temporal_voting map.
type VotingClassStatus struct {
	CurrentVotes     int    `json:"current_votes"`
	VotesRequired    int    `json:"votes_required"`
	HistoryLength    int    `json:"history_length"`
	WindowSize       int    `json:"window_size"`
	RecentDetections []bool `json:"recent_detections,omitempty"`
}

// MotionStatus mirrors the motion block of a stats snapshot.
type MotionStatus struct {
	Detected bool    `json:"detected"`
	Area     float64 `json:"area"`
	Contours int     `json:"contours"`
}

// StatsSnapshot mirrors the full-state telemetry dict the pipeline
// broadcasts. Snapshots are transient: each arrival fully replaces the
// projected display state. Optional fields are pointers so partial
// snapshots can skip the views they do not mention.
type StatsSnapshot struct {
	FPS             *float64                     `json:"fps,omitempty"`
	TotalDetections int                          `json:"total_detections"`
	AlertsSent      int                          `json:"alerts_sent"`
	FrameNumber     int                          `json:"frame_number"`
	UptimeSeconds   int                          `json:"uptime"`
	TemporalVoting  map[string]VotingClassStatus `json:"temporal_voting,omitempty"`
	Motion          *MotionStatus                `json:"motion,omitempty"`
}
