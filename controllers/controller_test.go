package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feedpulse/feedpulse/config"
	"github.com/feedpulse/feedpulse/middleware"
	"github.com/feedpulse/feedpulse/models"
	"github.com/feedpulse/feedpulse/realtime"
	"github.com/feedpulse/feedpulse/services"
)

type fakeImages struct{ url string }

func (f *fakeImages) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	return f.url, nil
}

func (f *fakeImages) Remove(url string) {}

// newTestRouter builds the HTTP surface over an in-memory database.
func newTestRouter(t *testing.T) (*gin.Engine, *realtime.Hub) {
	t.Helper()

	config.Set(config.AppConfig{
		// Per-test secret so tokens revoked by one test (via the package-global
		// blacklist) cannot collide with byte-identical tokens in another.
		JWTSecret:    "test-secret-" + t.Name(),
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

	hub := realtime.NewHub()
	auth := services.NewAuthService(db)
	feed := services.NewFeedService(db, &fakeImages{url: "/static/images/test.png"}, hub, 3, false)

	authController := NewAuthController(auth)
	feedController := NewFeedController(feed)
	liveController := NewLiveController(hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/auth/signup", authController.Signup)
	r.POST("/auth/login", authController.Login)
	r.POST("/auth/logout", middleware.AuthRequired(auth), authController.Logout)
	r.GET("/auth/status", middleware.AuthRequired(auth), authController.GetStatus)
	r.PUT("/auth/status", middleware.AuthRequired(auth), authController.PutStatus)

	feedGroup := r.Group("/feed")
	feedGroup.GET("/live", liveController.Stream)
	protected := feedGroup.Group("", middleware.AuthRequired(auth))
	protected.GET("/posts", feedController.ListPosts)
	protected.POST("/post", feedController.CreatePost)
	protected.GET("/post/:postId", feedController.GetPost)
	protected.PUT("/post/:postId", feedController.UpdatePost)
	protected.DELETE("/post/:postId", feedController.DeletePost)

	return r, hub
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write form field %s: %v", k, err)
		}
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "pic.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("png-bytes")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func signupAndLogin(t *testing.T, r *gin.Engine, email, name string) (string, uint) {
	t.Helper()
	w := doJSON(t, r, http.MethodPut, "/auth/signup", "", gin.H{
		"email": email, "name": name, "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %s", email, w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": email, "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	userID, _ := body["userId"].(float64)
	if token == "" || userID == 0 {
		t.Fatalf("login response missing token or userId: %v", body)
	}
	return token, uint(userID)
}
