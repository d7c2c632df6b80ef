package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/zulandar/calyard/internal/models"
	"github.com/zulandar/calyard/internal/schedule"
)

// SaveRun upserts the outcome of a committed run. The lock columns are left
// to ClaimRun and ReleaseRun.
func (s *Store) SaveRun(ctx context.Context, res *schedule.Result, at time.Time) error {
	sum := res.Summary
	meta := models.SchedulingMetadata{
		WorkspaceID:       res.WorkspaceID,
		LastScheduledAt:   &at,
		LastStatus:        string(res.Status),
		LastMessage:       res.Message,
		HabitsScheduled:   sum.HabitsScheduled,
		TasksScheduled:    sum.TasksScheduled,
		EventsCreated:     sum.EventsCreated,
		BumpedHabits:      sum.BumpedHabits,
		RescheduledHabits: sum.RescheduledHabits,
		WindowDays:        sum.WindowDays,
		RunState:          models.RunIdle,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "workspace_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_scheduled_at", "last_status", "last_message",
			"habits_scheduled", "tasks_scheduled", "events_created",
			"bumped_habits", "rescheduled_habits", "window_days", "updated_at",
		}),
	}).Create(&meta).Error
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", res.WorkspaceID, err)
	}
	return nil
}

// Status is the last recorded run plus what is currently schedulable.
type Status struct {
	LastScheduledAt   *time.Time
	LastStatus        string
	LastMessage       string
	Statistics        schedule.Summary
	ActiveHabits      int64
	AutoScheduleTasks int64
}

// Status reads the metadata and schedulable counts of a workspace. A
// workspace that never ran has zero statistics.
func (s *Store) Status(ctx context.Context, workspaceID string) (*Status, error) {
	if _, err := s.Workspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var metas []models.SchedulingMetadata
	if err := db.Where("workspace_id = ?", workspaceID).Limit(1).Find(&metas).Error; err != nil {
		return nil, fmt.Errorf("store: get metadata: %w", err)
	}
	st := &Status{}
	if len(metas) == 1 {
		m := metas[0]
		st.LastScheduledAt = m.LastScheduledAt
		st.LastStatus = m.LastStatus
		st.LastMessage = m.LastMessage
		st.Statistics = schedule.Summary{
			HabitsScheduled:   m.HabitsScheduled,
			TasksScheduled:    m.TasksScheduled,
			EventsCreated:     m.EventsCreated,
			BumpedHabits:      m.BumpedHabits,
			RescheduledHabits: m.RescheduledHabits,
			WindowDays:        m.WindowDays,
		}
	}

	if err := db.Model(&models.Habit{}).
		Where("workspace_id = ? AND is_active = ? AND auto_schedule = ?", workspaceID, true, true).
		Count(&st.ActiveHabits).Error; err != nil {
		return nil, fmt.Errorf("store: count habits: %w", err)
	}
	if err := db.Model(&models.Task{}).
		Where("workspace_id = ? AND auto_schedule = ? AND completed = ?", workspaceID, true, false).
		Count(&st.AutoScheduleTasks).Error; err != nil {
		return nil, fmt.Errorf("store: count tasks: %w", err)
	}
	return st, nil
}
