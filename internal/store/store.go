// Package store is the GORM-backed persistence collaborator of the
// scheduling service.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zulandar/calyard/internal/models"
	"github.com/zulandar/calyard/internal/schedule"
)

// DefaultLockTimeout is how long a running claim holds before it is stale.
const DefaultLockTimeout = 10 * time.Minute

// Store reads schedulable state and records runs.
type Store struct {
	db          *gorm.DB
	lockTimeout time.Duration
	log         zerolog.Logger
}

// New returns a Store. A non-positive lockTimeout uses DefaultLockTimeout.
func New(db *gorm.DB, lockTimeout time.Duration, log zerolog.Logger) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		db:          db,
		lockTimeout: lockTimeout,
		log:         log.With().Str("component", "store").Logger(),
	}
}

// Workspace returns the workspace with its resolved location.
func (s *Store) Workspace(ctx context.Context, id string) (schedule.Workspace, error) {
	var ws models.Workspace
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schedule.Workspace{}, fmt.Errorf("%w: %s", schedule.ErrWorkspaceNotFound, id)
	}
	if err != nil {
		return schedule.Workspace{}, fmt.Errorf("store: get workspace %s: %w", id, err)
	}
	loc, err := location(ws.Timezone)
	if err != nil {
		return schedule.Workspace{}, fmt.Errorf("store: workspace %s: %w", id, err)
	}
	return schedule.Workspace{ID: ws.ID, Name: ws.Name, Location: loc}, nil
}

func location(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

// IsMember reports whether userID belongs to the workspace.
func (s *Store) IsMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("store: check membership: %w", err)
	}
	return n > 0, nil
}

// AutoScheduleWorkspaces lists the ids of workspaces opted into unattended runs.
func (s *Store) AutoScheduleWorkspaces(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Workspace{}).
		Where("auto_schedule = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("store: list auto-schedule workspaces: %w", err)
	}
	return ids, nil
}
