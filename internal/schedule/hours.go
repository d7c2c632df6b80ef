package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/zulandar/calyard/internal/config"
)

// Block is a working range in minutes after local midnight.
type Block struct {
	Start int
	End   int
}

// WeekHours holds the blocks for each weekday, indexed by time.Weekday.
type WeekHours [7][]Block

// Hours maps hour kinds to their weekly blocks.
type Hours map[HourKind]WeekHours

// DefaultHours allows 07:00-23:00 every day for every kind.
func DefaultHours() Hours {
	var week WeekHours
	for d := range week {
		week[d] = []Block{{Start: 7 * 60, End: 23 * 60}}
	}
	return Hours{HoursPersonal: week, HoursWork: week, HoursMeeting: week}
}

// HoursFromConfig converts configured ranges, merging overlapping and
// adjacent ranges within a day.
func HoursFromConfig(cfg config.HoursConfig) (Hours, error) {
	h := Hours{}
	for kind, week := range cfg {
		var wh WeekHours
		for d, name := range config.Weekdays {
			var blocks []Block
			for _, r := range week[name] {
				start, err := config.ParseClock(r.Start)
				if err != nil {
					return nil, fmt.Errorf("schedule: hours %s.%s: %w", kind, name, err)
				}
				end, err := config.ParseClock(r.End)
				if err != nil {
					return nil, fmt.Errorf("schedule: hours %s.%s: %w", kind, name, err)
				}
				if end > start {
					blocks = append(blocks, Block{Start: start, End: end})
				}
			}
			wh[d] = mergeBlocks(blocks)
		}
		h[HourKind(kind)] = wh
	}
	return h, nil
}

// blocks returns the day's ranges for kind, falling back to personal hours
// for kinds that are not configured.
func (h Hours) blocks(kind HourKind, wd time.Weekday) []Block {
	if week, ok := h[kind]; ok {
		return week[wd]
	}
	return h[HoursPersonal][wd]
}

func mergeBlocks(in []Block) []Block {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start < in[j].Start })
	out := []Block{in[0]}
	for _, b := range in[1:] {
		last := &out[len(out)-1]
		if b.Start <= last.End {
			if b.End > last.End {
				last.End = b.End
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// PreferenceStart maps a coarse time-of-day preference to the earliest
// start in minutes after midnight.
func PreferenceStart(pref string) (int, bool) {
	switch pref {
	case "morning":
		return 5 * 60, true
	case "afternoon":
		return 12 * 60, true
	case "evening":
		return 17 * 60, true
	case "night":
		return 21 * 60, true
	}
	return 0, false
}
