package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/zulandar/calyard/internal/recurrence"
)

func TestSortHabits(t *testing.T) {
	got := sortHabits([]Habit{{ID: "c", Priority: 1}, {ID: "b", Priority: 5}, {ID: "a", Priority: 5}})
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("order = %s,%s,%s; want a,b,c", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestPlaceHabits_IdealTime(t *testing.T) {
	in := baseInput()
	h := dailyHabit("h1", "Journal", 3, 30)
	h.IdealTime = ptr(20 * 60)
	in.Habits = []Habit{h}

	res := Run(in)

	for _, e := range res.HabitEvents {
		if e.Start.Hour() != 20 || e.Start.Minute() != 0 {
			t.Errorf("habit at %v, want 20:00", e.Start)
		}
	}
}

func TestPlaceHabits_IdealTimeFallsBack(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 12)
	h := mondayHabit("h1", "Journal", 3, 30)
	h.IdealTime = ptr(20 * 60)
	in.Habits = []Habit{h}

	res := Run(in)

	if len(res.HabitEvents) != 1 || !res.HabitEvents[0].Start.Equal(at(2, 9, 0)) {
		t.Errorf("HabitEvents = %+v, want fallback to 09:00", res.HabitEvents)
	}
}

func TestPlaceHabits_StaysOnOccurrenceDate(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 10)
	in.Existing = []Event{{ID: "x", Title: "Busy", Start: at(2, 9, 0), End: at(2, 10, 0)}}
	in.Habits = []Habit{mondayHabit("h1", "Read", 3, 30)}

	res := Run(in)

	if len(res.HabitEvents) != 0 {
		t.Errorf("habit moved off its date: %+v", res.HabitEvents)
	}
	if len(res.HabitWarnings) != 1 || !strings.Contains(res.HabitWarnings[0], "2026-03-02") {
		t.Errorf("HabitWarnings = %v", res.HabitWarnings)
	}
}

func TestPlaceHabits_PriorityGetsEarlierSlot(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 10)
	in.Habits = []Habit{mondayHabit("low", "Low", 1, 60), mondayHabit("high", "High", 9, 60)}

	res := Run(in)

	if len(res.HabitEvents) != 1 || res.HabitEvents[0].SourceID != "high" {
		t.Errorf("HabitEvents = %+v, want only high", res.HabitEvents)
	}
	if len(res.HabitWarnings) != 1 || !strings.Contains(res.HabitWarnings[0], `"Low"`) {
		t.Errorf("HabitWarnings = %v", res.HabitWarnings)
	}
}

func TestPlaceHabits_InvalidInputsWarn(t *testing.T) {
	in := baseInput()
	in.Habits = []Habit{
		{ID: "h1", Name: "Zero", Priority: 1, Recurrence: recurrence.Rule{Frequency: recurrence.Daily}},
		{ID: "h2", Name: "Bad", Priority: 1, DurationMinutes: 30, Recurrence: recurrence.Rule{Frequency: "hourly"}},
	}

	res := Run(in)

	if len(res.HabitWarnings) != 2 {
		t.Fatalf("HabitWarnings = %v, want 2", res.HabitWarnings)
	}
	if len(res.Events) != 0 {
		t.Errorf("Events = %d, want 0", len(res.Events))
	}
}

func TestPlaceHabits_WorkHoursColor(t *testing.T) {
	in := baseInput()
	h := mondayHabit("h1", "Inbox zero", 3, 15)
	h.Hours = HoursWork
	in.Habits = []Habit{h}
	wk := DefaultHours()
	var work WeekHours
	work[time.Monday] = []Block{{Start: 13 * 60, End: 14 * 60}}
	wk[HoursWork] = work
	in.Hours = wk

	res := Run(in)

	if len(res.HabitEvents) != 1 {
		t.Fatalf("HabitEvents = %d, want 1", len(res.HabitEvents))
	}
	e := res.HabitEvents[0]
	if !e.Start.Equal(at(2, 13, 0)) || e.Color != "BLUE" {
		t.Errorf("event = %v %s, want 13:00 BLUE", e.Start, e.Color)
	}
}
