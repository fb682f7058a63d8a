// Package storage owns image persistence for post attachments: saving
// multipart uploads to the local images tree and cleaning up files no post
// ended up referencing.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feedpulse/feedpulse/models"
)

// allowedImageTypes mirrors the upload filter of the frontend contract:
// png and jpeg only.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// ImageStore saves uploaded images and records them for cleanup.
type ImageStore struct {
	db      *gorm.DB
	baseDir string
	maxSize int64
}

// NewImageStore creates a store writing under baseDir with the given size
// cap in megabytes.
func NewImageStore(db *gorm.DB, baseDir string, maxSizeMB int) *ImageStore {
	return &ImageStore{
		db:      db,
		baseDir: baseDir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
	}
}

// Accepts reports whether the upload's declared content type is an image we
// store.
func (s *ImageStore) Accepts(header *multipart.FileHeader) bool {
	return allowedImageTypes[strings.ToLower(header.Header.Get("Content-Type"))]
}

// Save writes the uploaded file into a date-partitioned directory with a
// collision-free name and returns its public URL. The stored file is
// recorded so the orphan cleaner can reap it if no post claims it.
func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !s.Accepts(header) {
		return "", fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type"))
	}
	if header.Size > s.maxSize {
		return "", fmt.Errorf("image exceeds %d bytes", s.maxSize)
	}

	now := time.Now()
	dir := filepath.Join(s.baseDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	name := filepath.Base(header.Filename)
	if name == "." || name == "" {
		name = "image"
	}
	safeName := uuid.New().String() + "_" + name
	dstPath := filepath.Join(dir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: s.maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if written > s.maxSize {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("image exceeds %d bytes", s.maxSize)
	}

	url := "/" + filepath.ToSlash(dstPath)
	if s.db != nil {
		absPath, _ := filepath.Abs(dstPath)
		_ = s.db.Create(&models.UploadedFile{FilePath: absPath, URL: url}).Error
	}
	return url, nil
}

// Remove deletes a stored image and its record, best effort.
func (s *ImageStore) Remove(url string) {
	if s.db == nil || url == "" {
		return
	}
	var rec models.UploadedFile
	if err := s.db.Where("url = ?", url).First(&rec).Error; err != nil {
		return
	}
	_ = os.Remove(rec.FilePath)
	_ = s.db.Delete(&models.UploadedFile{}, rec.ID).Error
}
