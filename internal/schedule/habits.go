package schedule

import (
	"fmt"
	"sort"
	"time"
)

// PlaceHabits places every occurrence of every habit in the window, highest
// priority first. Occurrences that already have a live event are skipped and
// occurrences without room produce a warning.
func PlaceHabits(rc *RunContext, habits []Habit) {
	for _, h := range sortHabits(habits) {
		if h.DurationMinutes <= 0 {
			rc.warnHabit(fmt.Sprintf("Habit %q has no duration and was skipped", h.Name))
			continue
		}
		dates, err := h.Recurrence.Dates(rc.Window.StartDay, rc.Window.End)
		if err != nil {
			rc.warnHabit(fmt.Sprintf("Habit %q has an invalid recurrence: %v", h.Name, err))
			continue
		}
		for _, day := range dates {
			date := day.Format(DateLayout)
			if rc.satisfied[occurrenceKey(h.ID, date)] {
				rc.trace(StepInfo, "skipped", fmt.Sprintf("Habit %q on %s is already scheduled", h.Name, date), nil)
				continue
			}
			slot, ok := rc.habitSlot(h, day)
			if !ok {
				rc.warnHabit(fmt.Sprintf("No available slot for habit %q on %s", h.Name, date))
				rc.trace(StepHabit, "failed", fmt.Sprintf("No slot for %q on %s", h.Name, date), nil)
				continue
			}
			hp := rc.placeHabit(h, date, slot, false)
			rc.trace(StepHabit, "placed", fmt.Sprintf("Placed habit %q at %s", h.Name, slot.Start.Format(time.RFC3339)), &hp.Event)
		}
	}
}

// habitSlot finds room on the occurrence's own date, honoring the ideal time
// first and falling back to the whole day.
func (rc *RunContext) habitSlot(h Habit, day time.Time) (Interval, bool) {
	d := minutes(h.DurationMinutes)
	b := Bounds{Hours: h.Hours, NotAfter: day.AddDate(0, 0, 1)}
	if h.IdealTime != nil {
		y, m, dd := day.Date()
		ideal := time.Date(y, m, dd, 0, *h.IdealTime, 0, 0, day.Location())
		if slot, ok := rc.Avail.NextFreeSlot(ideal, d, b); ok {
			return slot, true
		}
	}
	return rc.Avail.NextFreeSlot(day, d, b)
}

func (rc *RunContext) placeHabit(h Habit, date string, slot Interval, rescheduled bool) *HabitPlacement {
	color := h.Color
	if color == "" {
		color = h.Hours.Color()
	}
	ev := Event{
		ID:             rc.newID(SourceHabit, h.ID+"/"+date),
		Title:          h.Name,
		Start:          slot.Start,
		End:            slot.End,
		Color:          color,
		Source:         SourceHabit,
		SourceID:       h.ID,
		OccurrenceDate: date,
	}
	rc.Avail.Occupy(Occupant{Interval: slot, Tag: ev.ID, Kind: OccupantHabit, Priority: h.Priority})
	hp := &HabitPlacement{Event: ev, Habit: h, Rescheduled: rescheduled}
	rc.addHabit(hp)
	return hp
}

func (rc *RunContext) warnHabit(msg string) {
	rc.habitWarn = append(rc.habitWarn, msg)
}

// sortHabits orders by priority descending, then id.
func sortHabits(in []Habit) []Habit {
	out := append([]Habit(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}
