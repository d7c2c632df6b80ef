package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zulandar/calyard/internal/models"
	"github.com/zulandar/calyard/internal/schedule"
)

// ClaimRun marks the workspace as running for owner. The metadata row is
// locked FOR UPDATE while it is inspected; a running claim younger than the
// lock timeout yields schedule.ErrRunInProgress.
func (s *Store) ClaimRun(ctx context.Context, workspaceID, owner string, now time.Time) error {
	if owner == "" {
		return fmt.Errorf("store: claim run: owner is required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.SchedulingMetadata{WorkspaceID: workspaceID, RunState: models.RunIdle}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed metadata: %w", err)
		}

		var meta models.SchedulingMetadata
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("workspace_id = ?", workspaceID).
			First(&meta).Error; err != nil {
			return fmt.Errorf("lock metadata: %w", err)
		}
		if meta.RunState == models.RunRunning && meta.RunStartedAt != nil &&
			now.Sub(*meta.RunStartedAt) < s.lockTimeout {
			return fmt.Errorf("%w (held by %s since %s)", schedule.ErrRunInProgress,
				meta.RunOwner, meta.RunStartedAt.Format(time.RFC3339))
		}
		if meta.RunState == models.RunRunning {
			s.log.Warn().Str("workspace", workspaceID).Str("owner", meta.RunOwner).Msg("reclaiming stale run lock")
		}

		return tx.Model(&models.SchedulingMetadata{}).
			Where("workspace_id = ?", workspaceID).
			Updates(map[string]interface{}{
				"run_state":      models.RunRunning,
				"run_owner":      owner,
				"run_started_at": now,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("store: claim run %s: %w", workspaceID, err)
	}
	return nil
}

// ReleaseRun returns the workspace to idle if owner still holds it.
func (s *Store) ReleaseRun(ctx context.Context, workspaceID, owner string) error {
	result := s.db.WithContext(ctx).Model(&models.SchedulingMetadata{}).
		Where("workspace_id = ? AND run_state = ? AND run_owner = ?", workspaceID, models.RunRunning, owner).
		Updates(map[string]interface{}{
			"run_state":      models.RunIdle,
			"run_owner":      "",
			"run_started_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("store: release run %s: %w", workspaceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: release run %s: not held by %s", workspaceID, owner)
	}
	return nil
}
