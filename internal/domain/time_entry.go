package domain

import (
	"time"
)

// TimeInterval represents the worked period of a Timer time entry.
// Either Duration (ISO-8601, e.g. "PT1H30M") or an explicit End is set.
type TimeInterval struct {
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Duration string     `json:"duration,omitempty"`
}

// TimerTimeEntry represents a time entry recorded in the Timer service.
// Entries are created externally and immutable once read; the engine
// consumes each one at most once per reconciliation pass.
type TimerTimeEntry struct {
	ID          string       `json:"id"`
	TaskID      string       `json:"taskId"`
	ProjectID   string       `json:"projectId"`
	Description string       `json:"description"`
	Interval    TimeInterval `json:"timeInterval"`
}

// Hours converts the entry's interval into decimal hours, preferring the
// ISO-8601 duration and falling back to the explicit start/end pair.
func (e TimerTimeEntry) Hours() (float64, error) {
	if e.Interval.Duration != "" {
		return ParseHours(e.Interval.Duration)
	}
	if e.Interval.End != nil {
		return HoursBetween(e.Interval.Start, *e.Interval.End), nil
	}
	return 0, errEmptyInterval
}

// SpentOn returns the calendar date the entry's work started on.
func (e TimerTimeEntry) SpentOn() time.Time {
	start := e.Interval.Start
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

// TrackerTimeEntry represents a time entry on the Tracker side, created
// by the engine exactly once per matched Timer entry.
type TrackerTimeEntry struct {
	ID        int       `json:"id,omitempty"`
	IssueID   int       `json:"issue_id"`
	ProjectID int       `json:"project_id"`
	Hours     float64   `json:"hours"`
	Comments  string    `json:"comments"`
	SpentOn   time.Time `json:"spent_on"`
}
