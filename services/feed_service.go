package services

import (
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"github.com/feedpulse/feedpulse/apperror"
	"github.com/feedpulse/feedpulse/models"
	"github.com/feedpulse/feedpulse/realtime"
	"github.com/feedpulse/feedpulse/utils"
)

// ImageSaver stores post attachments. Satisfied by storage.ImageStore.
type ImageSaver interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Remove(url string)
}

// FeedService paginates and mutates posts, enforces ownership, and emits one
// change event per successful mutation.
type FeedService struct {
	db       *gorm.DB
	images   ImageSaver
	hub      *realtime.Hub
	pageSize int
	strict   bool
}

// NewFeedService wires the feed service. The hub is a hard dependency
// injected at startup; constructing the service without one is a programming
// error.
func NewFeedService(db *gorm.DB, images ImageSaver, hub *realtime.Hub, pageSize int, strictUploads bool) *FeedService {
	if hub == nil {
		panic("feed service requires an initialized realtime hub")
	}
	if pageSize <= 0 {
		pageSize = 3
	}
	return &FeedService{db: db, images: images, hub: hub, pageSize: pageSize, strict: strictUploads}
}

// PageSize returns the fixed window size of the feed.
func (s *FeedService) PageSize() int {
	return s.pageSize
}

// ListPosts returns the requested window of posts ordered by creation time
// descending, each joined with its creator's public identity, plus the total
// post count. An empty window is not an error.
func (s *FeedService) ListPosts(page int) ([]models.FeedItem, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.NewInternal("failed to count posts", err)
	}

	var posts []models.Post
	err := s.db.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * s.pageSize).
		Limit(s.pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, apperror.NewInternal("failed to list posts", err)
	}

	items, aerr := s.joinCreators(posts)
	if aerr != nil {
		return nil, 0, aerr
	}
	return items, total, nil
}

// CreatePost validates input, stores the image, persists the post under the
// acting user, and emits a create event.
func (s *FeedService) CreatePost(actingUser uint, title, content string, file multipart.File, header *multipart.FileHeader) (*models.FeedItem, error) {
	title = utils.Sanitize(strings.TrimSpace(title))
	content = utils.Sanitize(strings.TrimSpace(content))

	var fields []apperror.FieldError
	if title == "" {
		fields = append(fields, apperror.FieldError{Field: "title", Message: "Title must not be empty."})
	}
	if content == "" {
		fields = append(fields, apperror.FieldError{Field: "content", Message: "Content must not be empty."})
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidation("Validation failed, entered data is incorrect.", fields...)
	}
	if file == nil || header == nil {
		return nil, apperror.NewValidation("No image provided.")
	}

	// The creator reference must resolve before the post exists.
	var creator models.User
	if err := s.db.First(&creator, actingUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Could not find user")
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}

	imageURL, err := s.storeImage(file, header)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		CreatorID: actingUser,
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, apperror.NewInternal("failed to create post", err)
	}

	item := &models.FeedItem{Post: post, Creator: creator.Author()}
	s.hub.Emit(realtime.Event{
		Action:  realtime.ActionCreate,
		Post:    item,
		Creator: &item.Creator,
	})
	return item, nil
}

// GetPost returns a single post by id.
func (s *FeedService) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Could not find post")
		}
		return nil, apperror.NewInternal("failed to load post", err)
	}
	return &post, nil
}

// UpdatePost replaces title, content, and image of a post owned by the
// acting user, then emits an update event. imagePath is the client-supplied
// prior path used when no new file accompanies the request.
func (s *FeedService) UpdatePost(actingUser, postID uint, title, content, imagePath string, file multipart.File, header *multipart.FileHeader) (*models.FeedItem, error) {
	title = utils.Sanitize(strings.TrimSpace(title))
	content = utils.Sanitize(strings.TrimSpace(content))

	var fields []apperror.FieldError
	if title == "" {
		fields = append(fields, apperror.FieldError{Field: "title", Message: "Title must not be empty."})
	}
	if content == "" {
		fields = append(fields, apperror.FieldError{Field: "content", Message: "Content must not be empty."})
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidation("Validation failed, entered data is incorrect.", fields...)
	}

	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Could not find post")
		}
		return nil, apperror.NewInternal("failed to load post", err)
	}

	// Ownership: the server-derived acting user against the persisted
	// creator, never anything the client sent.
	if post.CreatorID != actingUser {
		return nil, apperror.NewForbidden("You cannot edit posts by another user!")
	}

	if file != nil && header != nil {
		stored, err := s.storeImage(file, header)
		if err != nil {
			return nil, err
		}
		if stored != "" {
			imagePath = stored
		}
	}
	if imagePath == "" {
		return nil, apperror.NewValidation("No file picked.")
	}

	post.Title = title
	post.Content = content
	post.ImageURL = imagePath
	if err := s.db.Save(&post).Error; err != nil {
		return nil, apperror.NewInternal("failed to update post", err)
	}

	items, aerr := s.joinCreators([]models.Post{post})
	if aerr != nil {
		return nil, aerr
	}
	item := &items[0]
	s.hub.Emit(realtime.Event{Action: realtime.ActionUpdate, Post: item})
	return item, nil
}

// DeletePost removes a post owned by the acting user. Because ownership is
// the creator_id column, the row deletion removes the post from the owner's
// set in the same operation. Emits a delete event.
func (s *FeedService) DeletePost(actingUser, postID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFound("Could not find post")
		}
		return apperror.NewInternal("failed to load post", err)
	}

	if post.CreatorID != actingUser {
		return apperror.NewForbidden("You cannot delete posts by another user!")
	}

	if err := s.db.Delete(&models.Post{}, post.ID).Error; err != nil {
		return apperror.NewInternal("failed to delete post", err)
	}

	// Stored image bookkeeping, best effort.
	if s.images != nil && post.ImageURL != "" {
		s.images.Remove(post.ImageURL)
	}

	s.hub.Emit(realtime.Event{Action: realtime.ActionDelete, PostID: post.ID})
	return nil
}

// storeImage applies the upload policy: strict mode fails the request when
// the store errors, lenient mode logs and continues with an empty URL.
func (s *FeedService) storeImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", nil
	}
	url, err := s.images.Save(file, header)
	if err == nil {
		return url, nil
	}
	if s.strict {
		return "", apperror.NewValidation("Image upload failed.",
			apperror.FieldError{Field: "image", Message: err.Error()})
	}
	if utils.Sugar != nil {
		utils.Sugar.Warnf("image store failed, continuing without image: %v", err)
	}
	return "", nil
}

// joinCreators resolves each post's creator to its public identity with one
// user query.
func (s *FeedService) joinCreators(posts []models.Post) ([]models.FeedItem, *apperror.Error) {
	items := make([]models.FeedItem, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	idSet := make(map[uint]struct{}, len(posts))
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		if _, seen := idSet[p.CreatorID]; !seen {
			idSet[p.CreatorID] = struct{}{}
			ids = append(ids, p.CreatorID)
		}
	}

	var users []models.User
	if err := s.db.Find(&users, ids).Error; err != nil {
		return nil, apperror.NewInternal("failed to load creators", err)
	}
	byID := make(map[uint]models.Author, len(users))
	for _, u := range users {
		byID[u.ID] = u.Author()
	}

	for _, p := range posts {
		items = append(items, models.FeedItem{Post: p, Creator: byID[p.CreatorID]})
	}
	return items, nil
}
