package models

import "time"

// CalendarEvent is an event on a workspace calendar. SourceType is nil for
// events that were not created by the scheduler.
type CalendarEvent struct {
	ID               string    `gorm:"primaryKey;size:36"`
	WorkspaceID      string    `gorm:"size:36;not null;index:idx_event_ws_start,priority:1"`
	Title            string    `gorm:"size:255;not null"`
	StartAt          time.Time `gorm:"not null;index:idx_event_ws_start,priority:2"`
	EndAt            time.Time `gorm:"not null"`
	Color            string    `gorm:"size:16"`
	SourceType       *string   `gorm:"size:8;index"`
	SourceID         *string   `gorm:"size:36;uniqueIndex:idx_event_occurrence,priority:1"`
	OccurrenceDate   *string   `gorm:"size:10;uniqueIndex:idx_event_occurrence,priority:2"`
	ScheduledMinutes int
	Locked           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
