package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultStatus is the status text assigned to freshly created users.
const DefaultStatus = "I am new!"

// User represents an account. Passwords are stored as bcrypt hashes only and
// never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Status       string    `gorm:"size:255" json:"status"`
	Provider     string    `gorm:"size:32" json:"provider,omitempty"`
	ProviderID   string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"foreignKey:CreatorID" json:"-"`
}

// Author is the public identity joined into feed items. It carries id and
// name only.
type Author struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Author returns the user's public identity.
func (u User) Author() Author {
	return Author{ID: u.ID, Name: u.Name}
}

// BeforeCreate fills defaults not provided by the caller.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Status == "" {
		u.Status = DefaultStatus
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
