package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedpulse/feedpulse/config"
	"github.com/feedpulse/feedpulse/controllers"
	"github.com/feedpulse/feedpulse/middleware"
	"github.com/feedpulse/feedpulse/realtime"
	"github.com/feedpulse/feedpulse/services"
	"github.com/feedpulse/feedpulse/storage"
	"github.com/feedpulse/feedpulse/utils"
)

// SetupRouter wires routes, middlewares, services, and controllers.
func SetupRouter(db *gorm.DB, hub *realtime.Hub) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// File-based zap access log instead of Gin's console logger.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded images are served from the static tree.
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	images := storage.NewImageStore(db, cfg.UploadsDir, cfg.UploadsMaxSizeMB)
	authService := services.NewAuthService(db)
	feedService := services.NewFeedService(db, images, hub, cfg.FeedPageSize, cfg.UploadsStrict)

	authController := controllers.NewAuthController(authService)
	oauthController := controllers.NewOAuthController(authService)
	feedController := controllers.NewFeedController(feedService)
	liveController := controllers.NewLiveController(hub)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.PUT("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", oauthController.Redirect)
	authGroup.GET("/oauth/:provider/callback", oauthController.Callback)
	authGroup.POST("/logout", middleware.AuthRequired(authService), authController.Logout)
	authGroup.GET("/status", middleware.AuthRequired(authService), authController.GetStatus)
	authGroup.PUT("/status", middleware.AuthRequired(authService), authController.PutStatus)

	feedGroup := r.Group("/feed")
	// The live stream carries only public post data and, like the rest of
	// the feed endpoints' former socket channel, accepts any client.
	feedGroup.GET("/live", liveController.Stream)

	protected := feedGroup.Group("")
	protected.Use(middleware.AuthRequired(authService))
	protected.GET("/posts", feedController.ListPosts)
	protected.POST("/post", feedController.CreatePost)
	protected.GET("/post/:postId", feedController.GetPost)
	protected.PUT("/post/:postId", feedController.UpdatePost)
	protected.DELETE("/post/:postId", feedController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	return r
}
