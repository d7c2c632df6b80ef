package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zulandar/calyard/internal/models"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Habit{},
		&models.Task{},
		&models.CalendarEvent{},
		&models.SchedulingMetadata{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedWorkspace upserts a workspace and its scheduling metadata row.
func SeedWorkspace(db *gorm.DB, id, name, timezone string) error {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("db: workspace %s timezone: %w", id, err)
	}
	ws := models.Workspace{ID: id, Name: name, Timezone: timezone, AutoSchedule: true}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "timezone"}),
	}).Create(&ws)
	if result.Error != nil {
		return fmt.Errorf("db: seed workspace %s: %w", id, result.Error)
	}

	meta := models.SchedulingMetadata{WorkspaceID: id, RunState: models.RunIdle}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error; err != nil {
		return fmt.Errorf("db: seed metadata for %s: %w", id, err)
	}
	return nil
}
