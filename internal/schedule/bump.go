package schedule

import (
	"fmt"
	"time"
)

// RescheduleBumped re-places every evicted habit occurrence, in bump order,
// at the first free slot from its original start (or the run start, if later)
// to the end of the window. Occurrences that find no room stay displaced.
func RescheduleBumped(rc *RunContext) {
	for i := range rc.bumps {
		br := &rc.bumps[i]
		orig, ok := rc.habitByID[br.OriginalEventID]
		if !ok {
			continue
		}
		earliest := br.Original.Start
		if earliest.Before(rc.Window.Start) {
			earliest = rc.Window.Start
		}
		b := Bounds{Hours: orig.Habit.Hours, NotAfter: rc.Window.End}
		slot, ok := rc.Avail.NextFreeSlot(earliest, br.Original.Duration(), b)
		if !ok {
			msg := fmt.Sprintf("Habit %q on %s was displaced and could not be rescheduled", br.HabitName, br.OccurrenceDate)
			rc.bumpWarn = append(rc.bumpWarn, msg)
			rc.trace(StepReschedule, "displaced", msg, nil)
			continue
		}
		hp := rc.placeHabit(orig.Habit, br.OccurrenceDate, slot, true)
		br.RescheduledEventID = hp.Event.ID
		rc.trace(StepReschedule, "rescheduled", fmt.Sprintf("Rescheduled habit %q (%s) to %s",
			br.HabitName, br.OccurrenceDate, slot.Start.Format(time.RFC3339)), &hp.Event)
	}
}
