package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zulandar/calyard/internal/config"
	"github.com/zulandar/calyard/internal/models"
	"github.com/zulandar/calyard/internal/recurrence"
	"github.com/zulandar/calyard/internal/schedule"
)

// Load reads the active habits, open tasks and the events a run must respect.
// Events are those overlapping the window plus every block of a loaded task,
// so earlier work counts toward the task total. Rows that cannot be
// converted are logged and skipped; an unknown event source type is an error.
func (s *Store) Load(ctx context.Context, workspaceID string, w schedule.Window) (*schedule.Snapshot, error) {
	loc := w.Now.Location()
	db := s.db.WithContext(ctx)
	from, to := w.StartDay.UTC(), w.End.UTC()

	var habits []models.Habit
	if err := db.Where("workspace_id = ? AND is_active = ? AND auto_schedule = ?", workspaceID, true, true).
		Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("store: load habits: %w", err)
	}
	var tasks []models.Task
	if err := db.Where("workspace_id = ? AND auto_schedule = ? AND completed = ?", workspaceID, true, false).
		Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("store: load tasks: %w", err)
	}

	var rows []models.CalendarEvent
	if err := db.Where("workspace_id = ? AND start_at < ? AND end_at > ?", workspaceID, to, from).
		Order("start_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: load events: %w", err)
	}
	if len(tasks) > 0 {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		var blocks []models.CalendarEvent
		if err := db.Where("workspace_id = ? AND source_type = ? AND source_id IN ?", workspaceID, schedule.SourceTask.String(), ids).
			Where("start_at >= ? OR end_at <= ?", to, from).
			Order("start_at ASC, id ASC").Find(&blocks).Error; err != nil {
			return nil, fmt.Errorf("store: load task blocks: %w", err)
		}
		rows = append(rows, blocks...)
	}

	snap := &schedule.Snapshot{}
	for _, h := range habits {
		hb, err := toHabit(h, loc)
		if err != nil {
			s.log.Warn().Err(err).Str("habit", h.ID).Msg("skipping habit")
			continue
		}
		snap.Habits = append(snap.Habits, hb)
	}
	for _, t := range tasks {
		tk, err := toTask(t, loc)
		if err != nil {
			s.log.Warn().Err(err).Str("task", t.ID).Msg("skipping task")
			continue
		}
		snap.Tasks = append(snap.Tasks, tk)
	}
	for _, r := range rows {
		ev, err := toEvent(r, loc)
		if err != nil {
			return nil, fmt.Errorf("store: load events: %w", err)
		}
		snap.Events = append(snap.Events, ev)
	}
	return snap, nil
}

func toHabit(m models.Habit, loc *time.Location) (schedule.Habit, error) {
	kind, err := hourKind(m.CalendarHours)
	if err != nil {
		return schedule.Habit{}, err
	}
	days, err := parseWeekdays(m.Weekdays)
	if err != nil {
		return schedule.Habit{}, err
	}
	anchor := m.CreatedAt
	if m.StartDate != nil {
		anchor = *m.StartDate
	}
	rule := recurrence.Rule{
		Frequency:  recurrence.Frequency(m.Frequency),
		Interval:   m.RecurrenceInterval,
		Anchor:     recurrence.Midnight(anchor.In(loc)),
		Weekdays:   days,
		DayOfMonth: m.DayOfMonth,
	}
	if err := rule.Validate(); err != nil {
		return schedule.Habit{}, err
	}
	var ideal *int
	if m.IdealTime != "" {
		v, err := config.ParseClock(m.IdealTime)
		if err != nil {
			return schedule.Habit{}, err
		}
		ideal = &v
	} else if v, ok := schedule.PreferenceStart(m.TimePreference); ok {
		ideal = &v
	}
	if m.DurationMinutes <= 0 {
		return schedule.Habit{}, fmt.Errorf("store: habit %s: duration %d", m.ID, m.DurationMinutes)
	}
	return schedule.Habit{
		ID:              m.ID,
		Name:            m.Name,
		Priority:        m.Priority,
		DurationMinutes: m.DurationMinutes,
		Recurrence:      rule,
		IdealTime:       ideal,
		Hours:           kind,
		Color:           m.Color,
	}, nil
}

func toTask(m models.Task, loc *time.Location) (schedule.Task, error) {
	kind, err := hourKind(m.CalendarHours)
	if err != nil {
		return schedule.Task{}, err
	}
	if m.DurationMinutes <= 0 {
		return schedule.Task{}, fmt.Errorf("store: task %s: duration %d", m.ID, m.DurationMinutes)
	}
	return schedule.Task{
		ID:              m.ID,
		Name:            m.Name,
		Priority:        m.Priority,
		TotalMinutes:    m.DurationMinutes,
		Deadline:        inLoc(m.Deadline, loc),
		StartAt:         inLoc(m.StartDate, loc),
		Splittable:      m.Splittable,
		MinSplitMinutes: m.MinSplitMinutes,
		MaxSplitMinutes: m.MaxSplitMinutes,
		Hours:           kind,
		Color:           m.Color,
	}, nil
}

func toEvent(m models.CalendarEvent, loc *time.Location) (schedule.Event, error) {
	ev := schedule.Event{
		ID:               m.ID,
		Title:            m.Title,
		Start:            m.StartAt.In(loc),
		End:              m.EndAt.In(loc),
		Color:            m.Color,
		ScheduledMinutes: m.ScheduledMinutes,
		Locked:           m.Locked,
	}
	if m.SourceType != nil {
		src, err := schedule.ParseSourceType(*m.SourceType)
		if err != nil {
			return schedule.Event{}, fmt.Errorf("event %s: %w", m.ID, err)
		}
		ev.Source = src
	}
	if m.SourceID != nil {
		ev.SourceID = *m.SourceID
	}
	if m.OccurrenceDate != nil {
		ev.OccurrenceDate = *m.OccurrenceDate
	}
	return ev, nil
}

func hourKind(s string) (schedule.HourKind, error) {
	switch k := schedule.HourKind(s); k {
	case "":
		return schedule.HoursPersonal, nil
	case schedule.HoursPersonal, schedule.HoursWork, schedule.HoursMeeting:
		return k, nil
	}
	return "", fmt.Errorf("store: unknown calendar hours %q", s)
}

// parseWeekdays decodes a JSON list of lowercase weekday names.
func parseWeekdays(raw []byte) ([]time.Weekday, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("store: weekdays: %w", err)
	}
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, ok := weekday(n)
		if !ok {
			return nil, fmt.Errorf("store: unknown weekday %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

func weekday(name string) (time.Weekday, bool) {
	for i, n := range config.Weekdays {
		if n == name {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func inLoc(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
