package liveview

import (
	"fmt"
	"sort"
)

// Voting row colors. The completion decision uses the unclamped
// percentage; the clamp is presentation only.
const (
	VotingComplete   = "complete"
	VotingInProgress = "in-progress"
)

// CounterValues is the display model for the headline counters.
type CounterValues struct {
	TotalDetections int
	AlertsSent      int
	FrameNumber     int
	Uptime          string
}

// VotingRow is the display model for one class in the voting table.
type VotingRow struct {
	ClassName        string
	CurrentVotes     int
	VotesRequired    int
	Percentage       float64
	Color            string
	HistoryLength    int
	WindowSize       int
	RecentDetections []bool
}

// MotionView is the display model for the motion indicator.
type MotionView struct {
	Detected bool
	Area     float64
	Contours int
}

// Views collects the four independent rendering surfaces fed by the
// projector. Any nil callback is skipped. Each surface is updated only
// when the incoming snapshot carries the corresponding field, so
// partial snapshots leave the other surfaces untouched.
type Views struct {
	Counters  func(CounterValues)
	FPS       func(float64)
	VotingRow func(VotingRow)
	Motion    func(MotionView)
}

// Projector transforms raw telemetry snapshots into display values.
// It holds no state between snapshots; each arrival fully replaces the
// projected display.
type Projector struct {
	views Views
}

// NewProjector creates a projector feeding the given views.
func NewProjector(views Views) *Projector {
	return &Projector{views: views}
}

// Project pushes one snapshot through all four surfaces.
func (p *Projector) Project(s StatsSnapshot) {
	if p.views.Counters != nil {
		p.views.Counters(CounterValues{
			TotalDetections: s.TotalDetections,
			AlertsSent:      s.AlertsSent,
			FrameNumber:     s.FrameNumber,
			Uptime:          FormatUptime(s.UptimeSeconds),
		})
	}

	if s.FPS != nil && p.views.FPS != nil {
		p.views.FPS(*s.FPS)
	}

	if s.TemporalVoting != nil && p.views.VotingRow != nil {
		// Map iteration order is random; sort so rows render stably.
		names := make([]string, 0, len(s.TemporalVoting))
		for name := range s.TemporalVoting {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p.views.VotingRow(votingRow(name, s.TemporalVoting[name]))
		}
	}

	if s.Motion != nil && p.views.Motion != nil {
		p.views.Motion(MotionView{
			Detected: s.Motion.Detected,
			Area:     s.Motion.Area,
			Contours: s.Motion.Contours,
		})
	}
}

func votingRow(name string, status VotingClassStatus) VotingRow {
	raw := VotingPercent(status.CurrentVotes, status.VotesRequired)

	color := VotingInProgress
	if raw >= 100 {
		color = VotingComplete
	}

	display := raw
	if display > 100 {
		display = 100
	}
	if display < 0 {
		display = 0
	}

	return VotingRow{
		ClassName:        name,
		CurrentVotes:     status.CurrentVotes,
		VotesRequired:    status.VotesRequired,
		Percentage:       display,
		Color:            color,
		HistoryLength:    status.HistoryLength,
		WindowSize:       status.WindowSize,
		RecentDetections: status.RecentDetections,
	}
}

// VotingPercent returns the unclamped vote progress percentage. A
// non-positive requirement means nothing is outstanding and counts as
// complete.
func VotingPercent(current, required int) float64 {
	if required <= 0 {
		return 100
	}
	return float64(current) / float64(required) * 100
}

// FormatUptime renders whole seconds as "Hh Mm".
func FormatUptime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
