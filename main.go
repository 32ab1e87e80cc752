package main

import (
	"github.com/gin-gonic/autotls"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/routes"
	"github.com/cppla/yatube/services"
	"github.com/cppla/yatube/storage"
	"github.com/cppla/yatube/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	media, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("media storage: %v", err)
	}

	rc := utils.GetRedis()
	r, err := routes.SetupRouter(cfg, routes.Dependencies{
		DB:        db,
		Cache:     utils.NewPageCache(rc),
		Media:     media,
		Blacklist: utils.NewTokenBlacklist(rc),
		Clock:     services.NewRealClock(),
	})
	if err != nil {
		utils.Sugar.Fatalf("router: %v", err)
	}

	if len(cfg.TLSDomains) > 0 {
		utils.Sugar.Infof("Starting server with autotls for %v", cfg.TLSDomains)
		if err := autotls.Run(r, cfg.TLSDomains...); err != nil {
			utils.Sugar.Fatalf("server stopped with error: %v", err)
		}
		return
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
