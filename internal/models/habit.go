package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Habit is a recurring commitment owned by a workspace.
type Habit struct {
	ID                 string         `gorm:"primaryKey;size:36"`
	WorkspaceID        string         `gorm:"size:36;not null;index"`
	Name               string         `gorm:"size:255;not null"`
	Priority           int            `gorm:"not null"`
	DurationMinutes    int            `gorm:"not null"`
	Frequency          string         `gorm:"size:32;not null;default:daily"`
	RecurrenceInterval int            `gorm:"not null"`
	Weekdays           datatypes.JSON `gorm:"type:json"`
	DayOfMonth         int
	StartDate          *time.Time
	IdealTime          string `gorm:"size:5"`
	TimePreference     string `gorm:"size:16"`
	CalendarHours      string `gorm:"size:16;default:personal"`
	Color              string `gorm:"size:16"`
	IsActive           bool   `gorm:"index"`
	AutoSchedule       bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
