package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a deadline-bound unit of work owned by a workspace.
type Task struct {
	ID              string     `gorm:"primaryKey;size:36"`
	WorkspaceID     string     `gorm:"size:36;not null;index"`
	Name            string     `gorm:"size:255;not null"`
	Priority        int        `gorm:"not null"`
	DurationMinutes int        `gorm:"not null"`
	Deadline        *time.Time `gorm:"index"`
	StartDate       *time.Time
	AutoSchedule    bool `gorm:"index"`
	Splittable      bool
	MinSplitMinutes int
	MaxSplitMinutes int
	CalendarHours   string `gorm:"size:16;default:personal"`
	Color           string `gorm:"size:16"`
	Completed       bool   `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
