package schedule

import (
	"strings"
	"testing"
)

func TestRescheduleBumped_Displaced(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 10)
	in.Habits = []Habit{mondayHabit("h1", "Read", 2, 60)}
	in.Tasks = []Task{{ID: "t1", Name: "Report", Priority: 8, TotalMinutes: 60, Deadline: ptr(at(3, 0, 0))}}
	for d := 3; d <= 8; d++ {
		in.Existing = append(in.Existing, Event{ID: "busy" + string(rune('0'+d)), Title: "Busy", Start: at(d, 9, 0), End: at(d, 10, 0)})
	}

	res := Run(in)

	if len(res.Bumps) != 1 {
		t.Fatalf("Bumps = %d, want 1", len(res.Bumps))
	}
	if res.Bumps[0].RescheduledEventID != "" {
		t.Error("displaced bump has a rescheduled event")
	}
	if len(res.RescheduleWarnings) != 1 || !strings.Contains(res.RescheduleWarnings[0], `Habit "Read" on 2026-03-02 was displaced`) {
		t.Errorf("RescheduleWarnings = %v", res.RescheduleWarnings)
	}
	if res.Status != StatusPartial {
		t.Errorf("Status = %q, want partial", res.Status)
	}
	if res.Summary.HabitsScheduled != 0 || res.Summary.EventsCreated != 1 {
		t.Errorf("Summary = %+v", res.Summary)
	}
}

func TestBump_PicksEarliestEligibleHabit(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 11)
	in.Habits = []Habit{
		mondayHabit("keep", "Keep", 9, 60),
		mondayHabit("evict", "Evict", 1, 60),
	}
	in.Tasks = []Task{{ID: "t1", Name: "Urgent", Priority: 5, TotalMinutes: 60, Deadline: ptr(at(3, 0, 0))}}

	res := Run(in)

	if len(res.Bumps) != 1 || res.Bumps[0].HabitID != "evict" {
		t.Fatalf("Bumps = %+v, want evict only", res.Bumps)
	}
	if !res.TaskEvents[0].Start.Equal(at(2, 10, 0)) {
		t.Errorf("task at %v, want the evicted 10:00 slot", res.TaskEvents[0].Start)
	}
	assertNoOverlap(t, res.Events)
}

func TestBump_RestoresWhenEvictionDoesNotHelp(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 10)
	in.Habits = []Habit{mondayHabit("h1", "Read", 1, 30)}
	in.Existing = []Event{{ID: "x", Title: "Busy", Start: at(2, 9, 30), End: at(2, 10, 0)}}
	in.Tasks = []Task{{ID: "t1", Name: "Long", Priority: 9, TotalMinutes: 60, Deadline: ptr(at(3, 0, 0))}}

	res := Run(in)

	if len(res.Bumps) != 0 {
		t.Errorf("Bumps = %+v, want none when eviction cannot make room", res.Bumps)
	}
	if len(res.HabitEvents) != 1 {
		t.Errorf("habit should stay in place, HabitEvents = %+v", res.HabitEvents)
	}
}

func TestBump_PrefersHabitsWithoutIdealTime(t *testing.T) {
	in := baseInput()
	in.Hours = hoursEveryDay(9, 11)
	timed := mondayHabit("timed", "Gym", 2, 60)
	timed.IdealTime = ptr(9 * 60)
	in.Habits = []Habit{timed, mondayHabit("flex", "Read", 1, 60)}
	in.Tasks = []Task{{ID: "t1", Name: "Urgent", Priority: 5, TotalMinutes: 60, Deadline: ptr(at(3, 0, 0))}}

	res := Run(in)

	if len(res.Bumps) != 1 || res.Bumps[0].HabitID != "flex" {
		t.Fatalf("Bumps = %+v, want the untimed habit evicted", res.Bumps)
	}
	if !res.TaskEvents[0].Start.Equal(at(2, 10, 0)) {
		t.Errorf("task at %v, want the 10:00 slot freed by Read", res.TaskEvents[0].Start)
	}
	for _, e := range res.HabitEvents {
		if e.SourceID == "timed" && !e.Start.Equal(at(2, 9, 0)) {
			t.Errorf("Gym moved to %v, want it kept at 09:00", e.Start)
		}
	}
	assertNoOverlap(t, res.Events)
}
