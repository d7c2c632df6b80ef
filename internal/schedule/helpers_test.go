package schedule

import (
	"testing"
	"time"

	"github.com/zulandar/calyard/internal/recurrence"
)

// mon0600 is Monday 2026-03-02 06:00 UTC.
var mon0600 = time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// hoursEveryDay allows [start, end) hours on every day for every kind.
func hoursEveryDay(startHour, endHour int) Hours {
	var week WeekHours
	for d := range week {
		week[d] = []Block{{Start: startHour * 60, End: endHour * 60}}
	}
	return Hours{HoursPersonal: week, HoursWork: week, HoursMeeting: week}
}

func dailyHabit(id, name string, priority, dur int) Habit {
	return Habit{ID: id, Name: name, Priority: priority, DurationMinutes: dur,
		Recurrence: recurrence.Rule{Frequency: recurrence.Daily}}
}

func mondayHabit(id, name string, priority, dur int) Habit {
	return Habit{ID: id, Name: name, Priority: priority, DurationMinutes: dur,
		Recurrence: recurrence.Rule{Frequency: recurrence.Weekly, Weekdays: []time.Weekday{time.Monday}}}
}

func baseInput() Input {
	return Input{
		WorkspaceID: "ws-1",
		Now:         mon0600,
		WindowDays:  7,
		Hours:       DefaultHours(),
		SlotMinutes: 15,
		Clock:       func() time.Time { return mon0600 },
	}
}

func assertNoOverlap(t *testing.T, events ...[]Event) {
	t.Helper()
	var all []Event
	for _, list := range events {
		all = append(all, list...)
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].Interval().Overlaps(all[j].Interval()) {
				t.Errorf("events overlap: %q [%s, %s) and %q [%s, %s)",
					all[i].Title, all[i].Start.Format(time.RFC3339), all[i].End.Format(time.RFC3339),
					all[j].Title, all[j].Start.Format(time.RFC3339), all[j].End.Format(time.RFC3339))
			}
		}
	}
}

func taskMinutes(events []Event, taskID string) int {
	n := 0
	for _, e := range events {
		if e.Source == SourceTask && e.SourceID == taskID {
			n += e.Minutes()
		}
	}
	return n
}
