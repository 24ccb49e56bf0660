// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/fittedco/wardrobe-service/internal/config"
	"github.com/fittedco/wardrobe-service/internal/handler"
	"github.com/fittedco/wardrobe-service/internal/middleware"
)

// Handlers collects every handler the router needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	ClothingItems *handler.ClothingItemHandler
	Outfits       *handler.OutfitHandler
}

// Register wires all routes. Auth endpoints are open (they establish the
// session); wardrobe endpoints sit behind JWT auth. The rate limiter wraps
// the whole /api group so brute-force attempts on login are bucketed too.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client, db *sql.DB) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	api.Use(middleware.RateLimit(rlCfg, rdb))

	api.GET("/health", handler.APIHealth(db))

	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me, middleware.JWTAuth(cfg.JWTSecret))

	protected := api.Group("", middleware.JWTAuth(cfg.JWTSecret))

	protected.POST("/clothing-items", h.ClothingItems.Create)
	protected.GET("/clothing-items", h.ClothingItems.Get)
	protected.DELETE("/clothing-items", h.ClothingItems.Delete)
	protected.POST("/clothing-items/search", h.ClothingItems.Search)

	protected.POST("/outfits", h.Outfits.Create)
	protected.GET("/outfits", h.Outfits.Get)
	protected.PUT("/outfits", h.Outfits.Update)
	protected.DELETE("/outfits", h.Outfits.Delete)
	protected.POST("/outfits/search", h.Outfits.Search)
}
