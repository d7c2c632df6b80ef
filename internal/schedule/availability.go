package schedule

import (
	"sort"
	"time"

	"github.com/zulandar/calyard/internal/recurrence"
)

// OccupantKind separates immovable events from same-run placements.
type OccupantKind uint8

const (
	// OccupantFixed is any event that existed before the run.
	OccupantFixed OccupantKind = iota
	OccupantHabit
	OccupantTask
)

// Occupant is one busy interval in the availability model, tagged with the
// event id that holds it.
type Occupant struct {
	Interval
	Tag      string
	Kind     OccupantKind
	Priority int
}

// Bounds restricts a search to an hour kind and a latest end time. A zero
// NotAfter means the window end.
type Bounds struct {
	Hours    HourKind
	NotAfter time.Time
}

// Availability tracks busy intervals inside a window and answers free-slot
// queries against the configured working hours. Occupants are kept per local
// date, ordered by start.
type Availability struct {
	window Window
	hours  Hours
	days   map[int][]Occupant
	tagged map[string]Occupant
}

// NewAvailability returns an empty model for the window.
func NewAvailability(w Window, hours Hours) *Availability {
	if hours == nil {
		hours = DefaultHours()
	}
	return &Availability{
		window: w,
		hours:  hours,
		days:   make(map[int][]Occupant),
		tagged: make(map[string]Occupant),
	}
}

// Occupy marks o busy. Empty intervals and duplicate tags are ignored.
func (a *Availability) Occupy(o Occupant) {
	if !o.Start.Before(o.End) {
		return
	}
	if _, dup := a.tagged[o.Tag]; dup && o.Tag != "" {
		return
	}
	if o.Tag != "" {
		a.tagged[o.Tag] = o
	}
	for _, k := range a.dayKeys(o.Interval) {
		list := a.days[k]
		i := sort.Search(len(list), func(i int) bool { return occupantLess(o, list[i]) })
		list = append(list, Occupant{})
		copy(list[i+1:], list[i:])
		list[i] = o
		a.days[k] = list
	}
}

// Vacate frees the interval held by tag and returns what it held.
func (a *Availability) Vacate(tag string) (Occupant, bool) {
	o, ok := a.tagged[tag]
	if !ok {
		return Occupant{}, false
	}
	delete(a.tagged, tag)
	for _, k := range a.dayKeys(o.Interval) {
		list := a.days[k]
		for i := range list {
			if list[i].Tag == tag {
				a.days[k] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	return o, true
}

// Lookup returns the occupant held by tag.
func (a *Availability) Lookup(tag string) (Occupant, bool) {
	o, ok := a.tagged[tag]
	return o, ok
}

// IsFree reports whether nothing occupies any part of iv.
func (a *Availability) IsFree(iv Interval) bool {
	return len(a.Occupants(iv.Start, iv.End)) == 0
}

// Occupants returns every occupant overlapping [from, to), ordered by start.
func (a *Availability) Occupants(from, to time.Time) []Occupant {
	iv := Interval{Start: from, End: to}
	if !iv.Start.Before(iv.End) {
		return nil
	}
	seen := make(map[string]bool)
	var out []Occupant
	for _, k := range a.dayKeys(iv) {
		for _, o := range a.days[k] {
			if !o.Overlaps(iv) {
				continue
			}
			if o.Tag != "" {
				if seen[o.Tag] {
					continue
				}
				seen[o.Tag] = true
			}
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return occupantLess(out[i], out[j]) })
	return out
}

// NextFreeSlot returns the earliest free interval of length d starting at or
// after earliest, inside working hours and ending no later than the bound.
func (a *Availability) NextFreeSlot(earliest time.Time, d time.Duration, b Bounds) (Interval, bool) {
	gap, ok := a.NextFreeGap(earliest, d, b)
	if !ok {
		return Interval{}, false
	}
	return Interval{Start: gap.Start, End: gap.Start.Add(d)}, true
}

// NextFreeGap returns the earliest maximal free run of at least minLen,
// clipped to working hours and the bound. Starts are aligned to the slot grid.
func (a *Availability) NextFreeGap(earliest time.Time, minLen time.Duration, b Bounds) (Interval, bool) {
	if minLen <= 0 {
		return Interval{}, false
	}
	limit := a.window.End
	if !b.NotAfter.IsZero() && b.NotAfter.Before(limit) {
		limit = b.NotAfter
	}
	if earliest.Before(a.window.Start) {
		earliest = a.window.Start
	}
	earliest = earliest.In(a.window.Start.Location())

	for day := recurrence.Midnight(earliest); day.Before(limit); day = day.AddDate(0, 0, 1) {
		y, m, d := day.Date()
		for _, blk := range a.hours.blocks(b.Hours, day.Weekday()) {
			start := time.Date(y, m, d, 0, blk.Start, 0, 0, day.Location())
			end := time.Date(y, m, d, 0, blk.End, 0, 0, day.Location())
			if end.After(limit) {
				end = limit
			}
			if start.Before(earliest) {
				start = earliest
			}
			start = alignUp(start, a.window.Slot)
			if !start.Before(end) {
				continue
			}
			if gap, ok := a.firstGap(start, end, minLen); ok {
				return gap, true
			}
		}
	}
	return Interval{}, false
}

// firstGap scans [start, end) for a free run of at least minLen.
func (a *Availability) firstGap(start, end time.Time, minLen time.Duration) (Interval, bool) {
	cursor := start
	for _, o := range a.Occupants(start, end) {
		if o.Start.After(cursor) && o.Start.Sub(cursor) >= minLen {
			return Interval{Start: cursor, End: o.Start}, true
		}
		if o.End.After(cursor) {
			cursor = alignUp(o.End, a.window.Slot)
		}
		if !cursor.Before(end) {
			return Interval{}, false
		}
	}
	if end.Sub(cursor) >= minLen {
		return Interval{Start: cursor, End: end}, true
	}
	return Interval{}, false
}

// dayKeys lists the local dates iv touches.
func (a *Availability) dayKeys(iv Interval) []int {
	loc := a.window.Start.Location()
	first := recurrence.Midnight(iv.Start.In(loc))
	last := iv.End.In(loc).Add(-time.Nanosecond)
	var keys []int
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		keys = append(keys, dayKey(d))
	}
	return keys
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func occupantLess(a, b Occupant) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.Tag < b.Tag
}
