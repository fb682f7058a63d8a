package models

import "time"

// Post is one feed item. CreatorID is set at creation and never changes;
// the set of posts owned by a user is exactly the rows carrying their id.
// CreatedAt is the feed ordering key.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatorID uint      `gorm:"index;not null" json:"creator"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `gorm:"size:1024" json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FeedItem is a post joined with its creator's public identity. The embedded
// creator id is shadowed by the resolved author object.
type FeedItem struct {
	Post
	Creator Author `json:"creator"`
}
