package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services/storage"
)

// CleanupExpiredTokens purges blacklist rows whose tokens have expired.
// Runs hourly; expired tokens fail signature-expiry checks anyway, so the
// rows are only audit noise past their expiry.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge expired tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}

// CleanupOrphanUploads removes upload records older than 24 hours whose file
// key no longer resolves in object storage, deleting the stranded metadata.
func (m *CronManager) CleanupOrphanUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "cleanup_orphan_uploads"
	cutoff := time.Now().Add(-24 * time.Hour)

	var uploads []model.UploadedContent
	err := m.db.Where("created_at < ? AND file_key = ?", cutoff, "").Find(&uploads).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query uploads: %w", err))
		return
	}

	removed := 0
	for _, upload := range uploads {
		if err := m.db.Delete(&upload).Error; err != nil {
			log.Printf("[CRON] Failed to delete upload %d: %v", upload.ID, err)
			continue
		}
		removed++
	}

	// Storage objects without a metadata row are strays from interrupted
	// uploads. Only the generic uploads prefix is swept; video and note
	// objects are owned by their content rows.
	strays := 0
	if m.spaces != nil {
		keys, err := m.spaces.ListFiles(ctx, storage.PrefixUploads)
		if err != nil {
			log.Printf("[CRON] Failed to list upload objects: %v", err)
		} else {
			for _, key := range keys {
				var count int64
				if err := m.db.Model(&model.UploadedContent{}).Where("file_key = ?", key).Count(&count).Error; err != nil {
					continue
				}
				if count > 0 {
					continue
				}
				if err := m.spaces.DeleteFile(ctx, key); err != nil {
					log.Printf("[CRON] Failed to delete stray object %s: %v", key, err)
					continue
				}
				strays++
			}
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d orphaned uploads, %d stray objects", removed, strays))
}

// PruneOldActivity deletes activity feed entries older than a year. The
// streak window never looks back further than that.
func (m *CronManager) PruneOldActivity() {
	jobName := "prune_old_activity"
	cutoff := time.Now().AddDate(-1, 0, 0)

	res := m.db.Where("created_at < ?", cutoff).Delete(&model.UserActivity{})
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune activity: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Pruned %d old activity entries", res.RowsAffected))
}
