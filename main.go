package main

import (
	"time"

	"github.com/watchpost/watchpost/config"
	"github.com/watchpost/watchpost/ingest"
	"github.com/watchpost/watchpost/models"
	"github.com/watchpost/watchpost/presence"
	"github.com/watchpost/watchpost/registry"
	"github.com/watchpost/watchpost/routes"
	"github.com/watchpost/watchpost/store"
	"github.com/watchpost/watchpost/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Media{})

	reg := registry.Parse(cfg.DeviceTokens)
	if reg.Len() == 0 {
		utils.Sugar.Warn("device token registry is empty, all uploads will be rejected")
	}

	writer, err := ingest.NewWriter(cfg.StorageDir)
	if err != nil {
		utils.Sugar.Fatalf("storage root unusable: %v", err)
	}

	mediaStore := store.NewMediaStore(db)
	maxBytes := int64(cfg.MaxUploadSizeMB) * 1024 * 1024
	svc := ingest.NewService(reg, writer, mediaStore, maxBytes, utils.Sugar)

	presenceTTL := time.Duration(cfg.PresenceTTLSec) * time.Second
	var tracker presence.Tracker
	if rdb := utils.GetRedis(); rdb != nil {
		tracker = presence.NewRedisTracker(rdb, presenceTTL)
	} else {
		tracker = presence.NewMemoryTracker(presenceTTL)
	}

	admin := registry.AdminCredential{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}

	r := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Service:  svc,
		Store:    mediaStore,
		Writer:   writer,
		Registry: reg,
		Presence: tracker,
		Admin:    admin,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
