package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/apperror"
	"github.com/feedpulse/feedpulse/middleware"
	"github.com/feedpulse/feedpulse/services"
	"github.com/feedpulse/feedpulse/utils"
)

const feedCachePrefix = "cache:feed:"

// FeedController exposes the paginated post CRUD endpoints.
type FeedController struct {
	feed *services.FeedService
}

// NewFeedController creates a FeedController.
func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{feed: feed}
}

// ListPosts returns one page of the feed with the total post count.
func (f *FeedController) ListPosts(ctx *gin.Context) {
	page := 1
	if raw := strings.TrimSpace(ctx.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.Fail(ctx, apperror.NewValidation("Validation failed, entered data is incorrect.",
				apperror.FieldError{Field: "page", Message: "Page must be a positive integer."}))
			return
		}
		page = n
	}

	cacheKey := fmt.Sprintf("%spage=%d:size=%d", feedCachePrefix, page, f.feed.PageSize())
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	items, total, err := f.feed.ListPosts(page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	body := gin.H{"message": "Posts found", "posts": items, "totalItems": total}
	utils.CacheSetJSON(cacheKey, body, time.Hour)
	ctx.JSON(http.StatusOK, body)
}

// CreatePost accepts a multipart form with title, content, and one image.
func (f *FeedController) CreatePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}

	title := ctx.PostForm("title")
	content := ctx.PostForm("content")
	file, header := formImage(ctx)
	if file != nil {
		defer file.Close()
	}

	item, err := f.feed.CreatePost(userID, title, content, file, header)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.InvalidateByPrefix(feedCachePrefix)
	utils.JSON(ctx, http.StatusCreated, "Post created successfully", gin.H{
		"post":    item,
		"creator": item.Creator,
	})
}

// GetPost returns a single post.
func (f *FeedController) GetPost(ctx *gin.Context) {
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	post, err := f.feed.GetPost(postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.JSON(ctx, http.StatusOK, "Post found", gin.H{"post": post})
}

// UpdatePost replaces a post's title, content, and image. A new image file
// is optional; without one the form's image field carries the prior path.
func (f *FeedController) UpdatePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	title := ctx.PostForm("title")
	content := ctx.PostForm("content")
	imagePath := ctx.PostForm("image")
	file, header := formImage(ctx)
	if file != nil {
		defer file.Close()
	}

	item, err := f.feed.UpdatePost(userID, postID, title, content, imagePath, file, header)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.InvalidateByPrefix(feedCachePrefix)
	utils.JSON(ctx, http.StatusOK, "Post updated", gin.H{"post": item})
}

// DeletePost removes a post owned by the acting user.
func (f *FeedController) DeletePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	if err := f.feed.DeletePost(userID, postID); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.InvalidateByPrefix(feedCachePrefix)
	utils.JSON(ctx, http.StatusOK, "Post deleted", nil)
}

func parsePostID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("postId")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.Fail(ctx, apperror.NewNotFound("Could not find post"))
		return 0, false
	}
	return uint(n), true
}

func formImage(ctx *gin.Context) (multipart.File, *multipart.FileHeader) {
	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		return nil, nil
	}
	return file, header
}
