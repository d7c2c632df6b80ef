// Package schedule places habit occurrences and task work blocks onto a
// workspace calendar. The pipeline itself is pure: persistence is reached
// only through the Store and Sink collaborators driven by Service.
package schedule

import (
	"fmt"
	"time"

	"github.com/zulandar/calyard/internal/recurrence"
)

// DateLayout formats occurrence dates.
const DateLayout = "2006-01-02"

// SourceType identifies what produced an engine event. The zero value means
// the event was not created by the engine.
type SourceType uint8

const (
	SourceHabit SourceType = iota + 1
	SourceTask
)

func (s SourceType) String() string {
	switch s {
	case SourceHabit:
		return "habit"
	case SourceTask:
		return "task"
	}
	return ""
}

// ParseSourceType rejects anything other than "habit" or "task".
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "habit":
		return SourceHabit, nil
	case "task":
		return SourceTask, nil
	}
	return 0, fmt.Errorf("schedule: unknown source type %q", s)
}

func (s SourceType) MarshalText() ([]byte, error) {
	if s != SourceHabit && s != SourceTask {
		return nil, fmt.Errorf("schedule: unknown source type %d", s)
	}
	return []byte(s.String()), nil
}

func (s *SourceType) UnmarshalText(b []byte) error {
	v, err := ParseSourceType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// HourKind selects which configured working hours an item may occupy.
type HourKind string

const (
	HoursPersonal HourKind = "personal"
	HoursWork     HourKind = "work"
	HoursMeeting  HourKind = "meeting"
)

// Color is the default event color for the hour kind.
func (k HourKind) Color() string {
	switch k {
	case HoursWork:
		return "BLUE"
	case HoursMeeting:
		return "CYAN"
	}
	return "GREEN"
}

// Habit is a recurring commitment placed once per occurrence. IdealTime, when
// set, is the preferred earliest start in minutes after midnight.
type Habit struct {
	ID              string
	Name            string
	Priority        int
	DurationMinutes int
	Recurrence      recurrence.Rule
	IdealTime       *int
	Hours           HourKind
	Color           string
}

// Task is a deadline-bound amount of work placed as one or more blocks.
type Task struct {
	ID              string
	Name            string
	Priority        int
	TotalMinutes    int
	Deadline        *time.Time
	StartAt         *time.Time
	Splittable      bool
	MinSplitMinutes int
	MaxSplitMinutes int
	Hours           HourKind
	Color           string
}

// Event is a calendar event, either already committed or produced by a run.
type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Start            time.Time  `json:"start_at"`
	End              time.Time  `json:"end_at"`
	Color            string     `json:"color,omitempty"`
	Source           SourceType `json:"source_type,omitempty"`
	SourceID         string     `json:"source_id,omitempty"`
	OccurrenceDate   string     `json:"occurrence_date,omitempty"`
	ScheduledMinutes int        `json:"scheduled_minutes,omitempty"`
	Locked           bool       `json:"locked,omitempty"`
	Preview          bool       `json:"is_preview,omitempty"`
}

// Interval returns the event's span.
func (e Event) Interval() Interval {
	return Interval{Start: e.Start, End: e.End}
}

// Minutes is the work credited to the event.
func (e Event) Minutes() int {
	if e.ScheduledMinutes > 0 {
		return e.ScheduledMinutes
	}
	return e.Interval().Minutes()
}

// Ongoing reports whether the event has started but not ended at now.
func (e Event) Ongoing(now time.Time) bool {
	return !e.Start.After(now) && e.End.After(now)
}

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

func (i Interval) Minutes() int { return int(i.Duration() / time.Minute) }

// Overlaps reports whether the two spans share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
