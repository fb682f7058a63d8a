package models

import "time"

// UploadedFile records stored images so the background cleaner can remove
// files that no post ended up referencing.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
