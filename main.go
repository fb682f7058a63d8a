package main

import (
	"log"
	"time"

	"github.com/feedpulse/feedpulse/config"
	"github.com/feedpulse/feedpulse/models"
	"github.com/feedpulse/feedpulse/realtime"
	"github.com/feedpulse/feedpulse/routes"
	"github.com/feedpulse/feedpulse/storage"
	"github.com/feedpulse/feedpulse/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.UploadedFile{})

	orphanTTL := time.Duration(cfg.UploadsOrphanTTLMins) * time.Minute
	storage.StartOrphanCleaner(db, orphanTTL, orphanTTL)

	hub := realtime.NewHub()
	r := routes.SetupRouter(db, hub)

	utils.Sugar.Infof("feedpulse listening on :%s", cfg.AppPort)
	// WriteTimeout stays zero so live event streams are not cut off.
	srv := utils.NewServer(":"+cfg.AppPort, r, 60*time.Second, 0)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Errorf("server exited: %v", err)
	}
}
