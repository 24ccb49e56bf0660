package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/fittedco/wardrobe-service/internal/config"
	"github.com/fittedco/wardrobe-service/internal/database"
	"github.com/fittedco/wardrobe-service/internal/handler"
	"github.com/fittedco/wardrobe-service/internal/repository"
	"github.com/fittedco/wardrobe-service/internal/router"
	"github.com/fittedco/wardrobe-service/internal/service"
	"github.com/fittedco/wardrobe-service/internal/storage"
)

func main() {
	// .env is for local development; in real deployments the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	media, err := storage.New(ctx, storage.Options{
		Endpoint:   cfg.MinioEndpoint,
		AccessKey:  cfg.MinioAccessKey,
		SecretKey:  cfg.MinioSecretKey,
		Bucket:     cfg.MinioBucket,
		UseSSL:     cfg.MinioUseSSL,
		CDNEnabled: cfg.CDNEnabled,
		CDNDomain:  cfg.CDNDomain,
	})
	cancel()
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	rdb := config.NewRedisClient()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	itemRepo := repository.NewClothingItemRepo(db)
	outfitRepo := repository.NewOutfitRepo(db)

	events := service.NewEventPublisher(cfg.EventsEnabled)
	userCache := service.NewUserCache(1024)

	authSvc := service.NewAuthService(userRepo, tokenRepo, userCache, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})
	itemSvc := service.NewClothingItemService(itemRepo, media, events)
	outfitSvc := service.NewOutfitService(outfitRepo, itemRepo, media, events)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, authSvc),
		ClothingItems: handler.NewClothingItemHandler(itemSvc),
		Outfits:       handler.NewOutfitHandler(outfitSvc),
	}, cfg, rlCfg, rdb, db)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
