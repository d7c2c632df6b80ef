// Package recurrence expands habit recurrence rules into occurrence dates.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type Frequency string

const (
	Daily          Frequency = "daily"
	Weekly         Frequency = "weekly"
	Weekdays       Frequency = "weekdays"
	Monthly        Frequency = "monthly"
	LastDayOfMonth Frequency = "last_day_of_month"
)

var (
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	ErrInvalidInterval  = errors.New("recurrence: invalid interval")
)

// Rule describes when a habit recurs. Interval 0 means 1. For weekly rules an
// empty Weekdays list means the anchor's weekday. For monthly rules DayOfMonth
// 0 means the anchor's day; months without that day are skipped.
type Rule struct {
	Frequency  Frequency
	Interval   int
	Anchor     time.Time
	Weekdays   []time.Weekday
	DayOfMonth int
}

func (r Rule) Validate() error {
	switch r.Frequency {
	case Daily, Weekly, Weekdays, Monthly, LastDayOfMonth:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
	}
	if r.interval() > 1 && r.Anchor.IsZero() {
		return errors.New("recurrence: anchor is required when interval > 1")
	}
	if r.Frequency == Weekly {
		if len(r.Weekdays) == 0 && r.Anchor.IsZero() {
			return errors.New("recurrence: weekly rule needs weekdays or an anchor")
		}
		seen := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, d := range r.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("recurrence: weekday %d out of range", d)
			}
			if seen[d] {
				return errors.New("recurrence: duplicate weekday")
			}
			seen[d] = true
		}
	}
	if r.Frequency == Monthly {
		if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
			return fmt.Errorf("recurrence: day of month %d out of range", r.DayOfMonth)
		}
		if r.DayOfMonth == 0 && r.Anchor.IsZero() {
			return errors.New("recurrence: monthly rule needs a day of month or an anchor")
		}
	}
	return nil
}

// Dates returns the local midnights of every occurrence in [from, to), in
// ascending order. from and to are interpreted as calendar dates in
// from's location; occurrences before the anchor date are excluded.
func (r Rule) Dates(from, to time.Time) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	loc := from.Location()
	start := Midnight(from)
	end := Midnight(to.In(loc))
	if !r.Anchor.IsZero() {
		a := Midnight(r.Anchor.In(loc))
		if a.After(start) {
			start = a
		}
	}

	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if r.matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r Rule) interval() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

func (r Rule) matches(d time.Time) bool {
	switch r.Frequency {
	case Daily:
		return r.anchorDistance(d)%r.interval() == 0
	case Weekdays:
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case Weekly:
		if !r.weekdaySet()[d.Weekday()] {
			return false
		}
		if r.interval() == 1 {
			return true
		}
		anchor := Midnight(r.Anchor.In(d.Location()))
		weekStart := anchor.AddDate(0, 0, -int(anchor.Weekday()))
		days := dayIndex(d) - dayIndex(weekStart)
		return (days/7)%r.interval() == 0
	case Monthly:
		if d.Day() != r.dayOfMonth(d.Location()) {
			return false
		}
		return r.monthDistance(d)%r.interval() == 0
	case LastDayOfMonth:
		if d.AddDate(0, 0, 1).Month() == d.Month() {
			return false
		}
		return r.monthDistance(d)%r.interval() == 0
	}
	return false
}

func (r Rule) weekdaySet() map[time.Weekday]bool {
	m := make(map[time.Weekday]bool, 7)
	if len(r.Weekdays) == 0 {
		m[r.Anchor.Weekday()] = true
		return m
	}
	for _, w := range r.Weekdays {
		m[w] = true
	}
	return m
}

func (r Rule) dayOfMonth(loc *time.Location) int {
	if r.DayOfMonth > 0 {
		return r.DayOfMonth
	}
	return r.Anchor.In(loc).Day()
}

// anchorDistance is the whole number of days from the anchor to d, or the
// day index of d when no anchor is set.
func (r Rule) anchorDistance(d time.Time) int {
	if r.Anchor.IsZero() {
		return 0
	}
	return dayIndex(d) - dayIndex(Midnight(r.Anchor.In(d.Location())))
}

func (r Rule) monthDistance(d time.Time) int {
	if r.Anchor.IsZero() {
		return 0
	}
	a := r.Anchor.In(d.Location())
	return (d.Year()-a.Year())*12 + int(d.Month()-a.Month())
}

// SortWeekdays returns the weekdays in Sunday-first order.
func SortWeekdays(days []time.Weekday) []time.Weekday {
	out := append([]time.Weekday(nil), days...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Midnight returns 00:00 of t's calendar date in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayIndex numbers calendar dates independent of DST transitions.
func dayIndex(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
