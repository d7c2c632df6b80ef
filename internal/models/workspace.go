package models

import "time"

// Workspace is a tenant whose calendar the engine manages.
type Workspace struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:128;not null"`
	Timezone     string `gorm:"size:64;default:UTC"`
	AutoSchedule bool   `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkspaceMember grants a user access to a workspace.
type WorkspaceMember struct {
	WorkspaceID string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"primaryKey;size:64"`
	Role        string `gorm:"size:16;default:member"`
	CreatedAt   time.Time
}
