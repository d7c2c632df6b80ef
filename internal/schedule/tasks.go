package schedule

import (
	"fmt"
	"sort"
	"time"
)

// PlaceTasks places outstanding task minutes, most urgent first. A task with
// a deadline that finds no free room may evict a strictly lower priority
// habit placed earlier in the same run.
func PlaceTasks(rc *RunContext, tasks []Task) {
	for _, t := range sortTasks(tasks) {
		rc.placeTask(t)
	}
}

func (rc *RunContext) placeTask(t Task) {
	if t.TotalMinutes <= 0 {
		rc.warnTask(fmt.Sprintf("Task %q has no duration and was skipped", t.Name))
		return
	}
	remaining := t.TotalMinutes - rc.taskDone[t.ID]
	if remaining <= 0 {
		rc.trace(StepInfo, "skipped", fmt.Sprintf("Task %q is already fully scheduled", t.Name), nil)
		return
	}
	outstanding := remaining

	minBlock, maxBlock := remaining, remaining
	if t.Splittable {
		minBlock, maxBlock = rc.splitBounds(t)
	}

	limit := rc.Window.End
	if t.Deadline != nil && t.Deadline.Before(limit) {
		limit = *t.Deadline
	}
	cursor := rc.Window.Start
	if t.StartAt != nil && t.StartAt.After(cursor) {
		cursor = *t.StartAt
	}
	b := Bounds{Hours: t.Hours, NotAfter: limit}

	for remaining > 0 && cursor.Before(limit) {
		want := min(remaining, maxBlock)
		need := min(minBlock, remaining)

		gap, ok := rc.Avail.NextFreeGap(cursor, minutes(need), b)
		if !ok && t.Deadline != nil {
			gap, ok = rc.bumpFor(t, cursor, need, b)
		}
		if !ok {
			break
		}
		size := min(want, gap.Minutes())
		block := Interval{Start: gap.Start, End: gap.Start.Add(minutes(size))}
		tp := rc.placeBlock(t, block, size)
		rc.trace(StepTask, "placed", fmt.Sprintf("Placed %d minutes of task %q at %s", size, t.Name, block.Start.Format(time.RFC3339)), &tp.Event)
		remaining -= size
		cursor = block.End
	}

	if remaining > 0 {
		msg := fmt.Sprintf("Task %q: no available slot, %d minutes unscheduled", t.Name, remaining)
		if remaining < outstanding {
			done := t.TotalMinutes - remaining
			msg = fmt.Sprintf("Task %q: partially scheduled, %d minutes remaining (%d%% complete)", t.Name, remaining, done*100/t.TotalMinutes)
		}
		rc.warnTask(msg)
		rc.trace(StepTask, "shortfall", msg, nil)
	}
}

// splitBounds returns the smallest and largest block for a splittable task.
func (rc *RunContext) splitBounds(t Task) (int, int) {
	lo, hi := t.MinSplitMinutes, t.MaxSplitMinutes
	if lo <= 0 {
		lo = rc.minSplit
	}
	if hi <= 0 {
		hi = rc.maxSplit
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// bumpFor evicts a same-run habit event of strictly lower priority whose
// removal opens a gap of at least need minutes before the bound. Habits
// without a preferred time go first, earliest first within each group. The
// eviction is undone when it does not help.
func (rc *RunContext) bumpFor(t Task, cursor time.Time, need int, b Bounds) (Interval, bool) {
	cands := rc.Avail.Occupants(cursor, b.NotAfter)
	sort.SliceStable(cands, func(i, j int) bool {
		return !rc.prefersTime(cands[i].Tag) && rc.prefersTime(cands[j].Tag)
	})
	for _, o := range cands {
		if o.Kind != OccupantHabit || o.Priority >= t.Priority {
			continue
		}
		if o.Start.Before(rc.Window.Now) || o.End.After(b.NotAfter) {
			continue
		}
		hp, ok := rc.habitByID[o.Tag]
		if !ok || hp.Bumped {
			continue
		}
		removed, _ := rc.Avail.Vacate(o.Tag)
		gap, ok := rc.Avail.NextFreeGap(cursor, minutes(need), b)
		if !ok || !gap.Start.Before(removed.End) {
			rc.Avail.Occupy(removed)
			continue
		}
		hp.Bumped = true
		br := BumpRecord{
			HabitID:         hp.Habit.ID,
			HabitName:       hp.Habit.Name,
			OccurrenceDate:  hp.Event.OccurrenceDate,
			OriginalEventID: hp.Event.ID,
			Original:        removed.Interval,
			TaskID:          t.ID,
			TaskName:        t.Name,
		}
		rc.bumps = append(rc.bumps, br)
		rc.trace(StepBump, "bumped", fmt.Sprintf("Task %q (priority %d) bumped habit %q (priority %d) on %s",
			t.Name, t.Priority, hp.Habit.Name, hp.Habit.Priority, hp.Event.OccurrenceDate), &hp.Event)
		return gap, true
	}
	return Interval{}, false
}

// prefersTime reports whether the same-run habit event tag has an ideal time.
func (rc *RunContext) prefersTime(tag string) bool {
	hp, ok := rc.habitByID[tag]
	return ok && hp.Habit.IdealTime != nil
}

func (rc *RunContext) placeBlock(t Task, block Interval, size int) *TaskPlacement {
	color := t.Color
	if color == "" {
		color = t.Hours.Color()
	}
	ev := Event{
		ID:               rc.newID(SourceTask, t.ID),
		Title:            t.Name,
		Start:            block.Start,
		End:              block.End,
		Color:            color,
		Source:           SourceTask,
		SourceID:         t.ID,
		ScheduledMinutes: size,
	}
	rc.Avail.Occupy(Occupant{Interval: block, Tag: ev.ID, Kind: OccupantTask, Priority: t.Priority})
	tp := &TaskPlacement{Event: ev, Task: t}
	rc.addTask(tp)
	return tp
}

func (rc *RunContext) warnTask(msg string) {
	rc.taskWarn = append(rc.taskWarn, msg)
}

// sortTasks orders by deadline ascending (none last), priority descending,
// then id.
func sortTasks(in []Task) []Task {
	out := append([]Task(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Deadline != nil && b.Deadline == nil:
			return true
		case a.Deadline == nil && b.Deadline != nil:
			return false
		case a.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
	return out
}
