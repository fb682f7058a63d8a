package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFeedItemJSONShadowsCreatorID(t *testing.T) {
	item := FeedItem{
		Post: Post{
			ID:        5,
			CreatorID: 9,
			Title:     "hello",
			Content:   "world",
			ImageURL:  "/static/images/x.png",
			CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Creator: Author{ID: 9, Name: "alice"},
	}

	b, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	creator, ok := decoded["creator"].(map[string]any)
	if !ok {
		t.Fatalf("creator = %v, want the resolved author object", decoded["creator"])
	}
	if creator["name"] != "alice" {
		t.Errorf("creator.name = %v", creator["name"])
	}
	if id, _ := creator["id"].(float64); id != 9 {
		t.Errorf("creator.id = %v", creator["id"])
	}

	if decoded["imageUrl"] != "/static/images/x.png" {
		t.Errorf("imageUrl = %v", decoded["imageUrl"])
	}
	if _, has := decoded["createdAt"]; !has {
		t.Error("createdAt missing from feed item")
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	user := User{
		ID:           1,
		Email:        "alice@example.com",
		Name:         "alice",
		PasswordHash: "$2a$10$something",
		ProviderID:   "gh-123",
	}

	b, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "something") {
		t.Error("password hash serialized")
	}
	if strings.Contains(s, "gh-123") {
		t.Error("provider id serialized")
	}
}
