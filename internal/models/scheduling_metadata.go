package models

import "time"

// Run lock states for SchedulingMetadata.RunState.
const (
	RunIdle    = "idle"
	RunRunning = "running"
)

// SchedulingMetadata records the last run of a workspace and doubles as the
// per-workspace commit lock.
type SchedulingMetadata struct {
	WorkspaceID       string `gorm:"primaryKey;size:36"`
	LastScheduledAt   *time.Time
	LastStatus        string `gorm:"size:16"`
	LastMessage       string `gorm:"type:text"`
	HabitsScheduled   int
	TasksScheduled    int
	EventsCreated     int
	BumpedHabits      int
	RescheduledHabits int
	WindowDays        int
	RunState          string `gorm:"size:16;default:idle"`
	RunOwner          string `gorm:"size:64"`
	RunStartedAt      *time.Time
	UpdatedAt         time.Time
}

// TableName keeps the singular table name.
func (SchedulingMetadata) TableName() string { return "scheduling_metadata" }
