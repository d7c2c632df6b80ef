package schedule

import (
	"time"

	"github.com/zulandar/calyard/internal/recurrence"
)

const (
	MinWindowDays     = 7
	MaxWindowDays     = 90
	DefaultWindowDays = 30
)

// ClampWindowDays bounds a requested horizon; zero means the default.
func ClampWindowDays(n int) int {
	switch {
	case n == 0:
		return DefaultWindowDays
	case n < MinWindowDays:
		return MinWindowDays
	case n > MaxWindowDays:
		return MaxWindowDays
	}
	return n
}

// Window is the horizon of one run, in the workspace's location.
type Window struct {
	// Now is the run clock. Start is Now rounded up to the slot grid;
	// nothing is placed earlier.
	Now      time.Time
	Start    time.Time
	StartDay time.Time
	End      time.Time
	Days     int
	Slot     time.Duration
}

// NewWindow builds a window of days calendar days starting on now's date.
func NewWindow(now time.Time, days int, slot time.Duration) Window {
	if slot <= 0 {
		slot = 15 * time.Minute
	}
	days = ClampWindowDays(days)
	startDay := recurrence.Midnight(now)
	return Window{
		Now:      now,
		Start:    alignUp(now, slot),
		StartDay: startDay,
		End:      startDay.AddDate(0, 0, days),
		Days:     days,
		Slot:     slot,
	}
}

// alignUp rounds t up to the next multiple of slot after local midnight.
func alignUp(t time.Time, slot time.Duration) time.Time {
	mid := recurrence.Midnight(t)
	off := t.Sub(mid)
	if r := off % slot; r != 0 {
		return t.Add(slot - r)
	}
	return t
}
