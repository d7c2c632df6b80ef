package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/calyard/internal/models"
	"github.com/zulandar/calyard/internal/schedule"
)

const insertBatch = 100

// PersistingSink applies a plan to the calendar in one transaction: the
// discarded events are deleted and the new events inserted, or nothing is.
type PersistingSink struct {
	db *gorm.DB
}

// NewSink returns a sink writing to db.
func NewSink(db *gorm.DB) *PersistingSink {
	return &PersistingSink{db: db}
}

// Write applies plan.
func (p *PersistingSink) Write(ctx context.Context, plan schedule.Plan) error {
	rows := make([]models.CalendarEvent, 0, len(plan.Events))
	for _, e := range plan.Events {
		rows = append(rows, fromEvent(plan.WorkspaceID, e))
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plan.Discard) > 0 {
			if err := tx.Where("workspace_id = ? AND id IN ? AND locked = ? AND source_type IS NOT NULL",
				plan.WorkspaceID, plan.Discard, false).
				Delete(&models.CalendarEvent{}).Error; err != nil {
				return fmt.Errorf("discard events: %w", err)
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, insertBatch).Error; err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: write plan %s: %w", plan.WorkspaceID, err)
	}
	return nil
}

func fromEvent(workspaceID string, e schedule.Event) models.CalendarEvent {
	row := models.CalendarEvent{
		ID:               e.ID,
		WorkspaceID:      workspaceID,
		Title:            e.Title,
		StartAt:          e.Start.UTC(),
		EndAt:            e.End.UTC(),
		Color:            e.Color,
		ScheduledMinutes: e.ScheduledMinutes,
		Locked:           e.Locked,
	}
	if e.Source != 0 {
		src := e.Source.String()
		row.SourceType = &src
	}
	if e.SourceID != "" {
		id := e.SourceID
		row.SourceID = &id
	}
	if e.OccurrenceDate != "" {
		d := e.OccurrenceDate
		row.OccurrenceDate = &d
	}
	return row
}
