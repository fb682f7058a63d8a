package storage

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/feedpulse/feedpulse/models"
	"github.com/feedpulse/feedpulse/utils"
)

// StartOrphanCleaner launches a background goroutine that periodically
// deletes stored images older than ttl that no post references. Such files
// are left behind when an upload succeeds but the post creation fails.
// Best-effort: failures are logged and retried next round.
func StartOrphanCleaner(db *gorm.DB, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing work at startup.
			time.Sleep(interval)
			sweepOrphans(db, ttl)
		}
	}()
}

func sweepOrphans(db *gorm.DB, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	var items []models.UploadedFile
	err := db.
		Where("created_at <= ?", cutoff).
		Where("url NOT IN (?)", db.Model(&models.Post{}).Select("image_url")).
		Limit(100).
		Find(&items).Error
	if err != nil {
		utils.Sugar.Warnf("orphan cleaner query failed: %v", err)
		return
	}
	for _, it := range items {
		if it.FilePath != "" {
			_ = os.Remove(it.FilePath)
		}
		// Remove the row regardless of file deletion outcome.
		if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
			utils.Sugar.Warnf("orphan cleaner delete row failed: %v", err)
		}
	}
}
