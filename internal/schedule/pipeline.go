package schedule

import (
	"fmt"
	"time"
)

// Input is everything one run needs. Now must be in the workspace location.
type Input struct {
	WorkspaceID     string
	Now             time.Time
	WindowDays      int
	Force           bool
	Habits          []Habit
	Tasks           []Task
	Existing        []Event
	Hours           Hours
	SlotMinutes     int
	MinSplitMinutes int
	MaxSplitMinutes int
	Trace           bool
	Clock           func() time.Time
}

// Status is the outcome classification of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Summary counts what a run produced.
type Summary struct {
	HabitsScheduled   int `json:"habitsScheduled"`
	TasksScheduled    int `json:"tasksScheduled"`
	EventsCreated     int `json:"eventsCreated"`
	BumpedHabits      int `json:"bumpedHabits"`
	RescheduledHabits int `json:"rescheduledHabits"`
	WindowDays        int `json:"windowDays"`
}

// Result is the outcome of a run. Events holds the live events created by
// the run, in placement order; bumped events are not included.
type Result struct {
	WorkspaceID string
	Window      Window
	State       State
	Status      Status
	Message     string
	Summary     Summary

	Events      []Event
	HabitEvents []Event
	TaskEvents  []Event
	Rescheduled []Event
	Bumps       []BumpRecord
	Discard     []string
	Steps       []Step

	HabitWarnings      []string
	TaskWarnings       []string
	RescheduleWarnings []string
	Warnings           []string
}

// Run executes the placement pipeline. It has no side effects outside the
// returned result.
func Run(in Input) *Result {
	rc := newRunContext(in)

	rc.enter(StateLoadExistingEvents)
	rc.loadExisting(in.Existing, in.Force)

	rc.enter(StatePlaceHabits)
	PlaceHabits(rc, in.Habits)

	rc.enter(StatePlaceTasks)
	PlaceTasks(rc, in.Tasks)

	rc.enter(StateRescheduleBumped)
	RescheduleBumped(rc)

	return rc.result()
}

// loadExisting seeds the availability model with committed events. With
// force, engine events that are unlocked and not yet started are dropped and
// listed for deletion instead.
func (rc *RunContext) loadExisting(events []Event, force bool) {
	for _, e := range events {
		if force && discardable(e, rc.Window.Now) {
			rc.discard = append(rc.discard, e.ID)
			rc.trace(StepInfo, "discarded", fmt.Sprintf("Discarding previous event %q at %s", e.Title, e.Start.Format(time.RFC3339)), nil)
			continue
		}
		rc.existingCnt++
		switch e.Source {
		case SourceHabit:
			if e.OccurrenceDate != "" {
				rc.satisfied[occurrenceKey(e.SourceID, e.OccurrenceDate)] = true
			}
		case SourceTask:
			rc.taskDone[e.SourceID] += e.Minutes()
		}
		iv := e.Interval()
		if iv.Overlaps(Interval{Start: rc.Window.StartDay, End: rc.Window.End}) {
			rc.Avail.Occupy(Occupant{Interval: iv, Tag: e.ID, Kind: OccupantFixed})
		}
	}
	rc.trace(StepInfo, "loaded", fmt.Sprintf("Loaded %d existing events, discarded %d", rc.existingCnt, len(rc.discard)), nil)
}

// discardable reports whether a forced run may remove e.
func discardable(e Event, now time.Time) bool {
	return e.Source != 0 && !e.Locked && e.Start.After(now)
}

func (rc *RunContext) result() *Result {
	res := &Result{
		WorkspaceID:        rc.WorkspaceID,
		Window:             rc.Window,
		State:              rc.state,
		Bumps:              rc.bumps,
		Discard:            rc.discard,
		Steps:              rc.steps,
		HabitWarnings:      rc.habitWarn,
		TaskWarnings:       rc.taskWarn,
		RescheduleWarnings: rc.bumpWarn,
	}

	tasks := make(map[string]bool)
	tasksByID := make(map[string]*TaskPlacement, len(rc.tasks))
	for _, tp := range rc.tasks {
		tasksByID[tp.Event.ID] = tp
	}
	for _, id := range rc.order {
		if hp, ok := rc.habitByID[id]; ok {
			if hp.Bumped {
				continue
			}
			res.Events = append(res.Events, hp.Event)
			if hp.Rescheduled {
				res.Rescheduled = append(res.Rescheduled, hp.Event)
			} else {
				res.HabitEvents = append(res.HabitEvents, hp.Event)
			}
			continue
		}
		if tp, ok := tasksByID[id]; ok {
			res.Events = append(res.Events, tp.Event)
			res.TaskEvents = append(res.TaskEvents, tp.Event)
			tasks[tp.Task.ID] = true
		}
	}

	res.Warnings = append(res.Warnings, rc.habitWarn...)
	res.Warnings = append(res.Warnings, rc.taskWarn...)
	res.Warnings = append(res.Warnings, rc.bumpWarn...)

	res.Summary = Summary{
		HabitsScheduled:   len(res.HabitEvents) + len(res.Rescheduled),
		TasksScheduled:    len(tasks),
		EventsCreated:     len(res.Events),
		BumpedHabits:      len(rc.bumps),
		RescheduledHabits: len(res.Rescheduled),
		WindowDays:        rc.Window.Days,
	}
	res.Status = classify(res.Summary.EventsCreated, len(res.Warnings))
	res.Message = summarize(res)
	return res
}

func classify(events, warnings int) Status {
	switch {
	case warnings == 0:
		return StatusSuccess
	case events == 0:
		return StatusFailed
	}
	return StatusPartial
}

func summarize(res *Result) string {
	s := res.Summary
	msg := fmt.Sprintf("Scheduled %d habit events and %d task blocks over %d days", s.HabitsScheduled, len(res.TaskEvents), s.WindowDays)
	if s.BumpedHabits > 0 {
		msg += fmt.Sprintf(", bumped %d habits (%d rescheduled)", s.BumpedHabits, s.RescheduledHabits)
	}
	if n := len(res.Warnings); n > 0 {
		msg += fmt.Sprintf(" with %d warnings", n)
	}
	return msg
}

// Plan is what a sink must apply: removals and inserts, as a unit.
func (r *Result) Plan() Plan {
	return Plan{WorkspaceID: r.WorkspaceID, Discard: r.Discard, Events: r.Events}
}
