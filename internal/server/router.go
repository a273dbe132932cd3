package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/medialog/medialog-backend/internal/handlers"
  "github.com/medialog/medialog-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler        *handlers.AuthHandler
  AuthMiddleware     *middleware.AuthMiddleware
  UserHandler        *handlers.UserHandler
  ListHandler        *handlers.ListHandler
  CatalogHandler     *handlers.CatalogHandler
  StatsHandler       *handlers.StatsHandler
  AchievementHandler *handlers.AchievementHandler
  FeedHandler        *handlers.FeedHandler
  MediaDir           string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("medialog"))

  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  if cfg.MediaDir != "" {
    router.Static("/media/avatars", cfg.MediaDir)
  }
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)
  router.POST("/refresh", cfg.AuthMiddleware.AttachRefreshToken(), cfg.AuthHandler.Refresh)

// ===============
// || Protected ||
// ===============
  api := router.Group("/api")
  api.Use(cfg.AuthMiddleware.RequireAuth())

  // Auth
  api.POST("/logout", cfg.AuthHandler.Logout)

  // User
  api.GET("/user", cfg.UserHandler.Me)
  api.POST("/user/avatar", cfg.UserHandler.UploadAvatar)

  // Catalog
  api.GET("/catalog/:media_type", cfg.CatalogHandler.List)
  api.GET("/entry/:entry_id", cfg.CatalogHandler.Get)
  api.POST("/catalog", cfg.CatalogHandler.Create)

  // Lists
  api.GET("/list/:media_type", cfg.ListHandler.List)
  api.POST("/list/:media_type/:entry_id", cfg.ListHandler.Add)
  api.PATCH("/list/:media_type/:entry_id", cfg.ListHandler.Update)
  api.DELETE("/list/:media_type/:entry_id", cfg.ListHandler.Remove)

  // Stats
  api.GET("/stats", cfg.StatsHandler.GetAll)
  api.GET("/stats/:media_type", cfg.StatsHandler.GetForMediaType)
  api.POST("/stats/reconcile", cfg.StatsHandler.Reconcile)

  // Achievements
  api.GET("/achievements", cfg.AchievementHandler.Progress)
  api.GET("/achievements/catalog", cfg.AchievementHandler.Catalog)

  // Activity feed
  api.GET("/feed", cfg.FeedHandler.List)
  api.DELETE("/feed/:log_id", cfg.FeedHandler.Delete)

  return router
}
