package services

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feedpulse/feedpulse/config"
	"github.com/feedpulse/feedpulse/models"
)

// newTestDB opens an isolated in-memory database migrated with all models.
// Redis-backed paths stay disabled so tests need no external services.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.Set(config.AppConfig{
		JWTSecret:    "test-secret",
		FeedPageSize: 3,
		CacheEnabled: false,
	})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.UploadedFile{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func mustSignup(t *testing.T, auth *AuthService, email, name, password string) uint {
	t.Helper()
	id, err := auth.Signup(email, name, password)
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return id
}
