package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/medialog/medialog-backend/internal/cache"
  "github.com/medialog/medialog-backend/internal/db"
  "github.com/medialog/medialog-backend/internal/handlers"
  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/middleware"
  "github.com/medialog/medialog-backend/internal/observability"
  "github.com/medialog/medialog-backend/internal/repos"
  "github.com/medialog/medialog-backend/internal/seed"
  "github.com/medialog/medialog-backend/internal/server"
  "github.com/medialog/medialog-backend/internal/services"
  "github.com/medialog/medialog-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Tracing
  shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "medialog",
    Environment: os.Getenv("APP_ENV"),
    Version:     os.Getenv("APP_VERSION"),
  })
  if shutdownOtel != nil {
    defer shutdownOtel(context.Background())
  }

  // Env
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  mediaDir := utils.GetEnv("AVATAR_DIR", "./media/avatars", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Redis (optional)
  rdb, err := cache.NewRedisClient(log)
  if err != nil {
    log.Warn("Redis init failed, stats cache disabled", "error", err)
    rdb = nil
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  mediaEntryRepo := repos.NewMediaEntryRepo(thePG, log)
  userEntryRepo := repos.NewUserEntryRepo(thePG, log)
  aggregateStatsRepo := repos.NewAggregateStatsRepo(thePG, log)
  achievementRepo := repos.NewAchievementRepo(thePG, log)
  userAchievementRepo := repos.NewUserAchievementRepo(thePG, log)
  updateLogRepo := repos.NewUpdateLogRepo(thePG, log)

  // Achievement catalog
  if err := seed.Achievements(context.Background(), thePG, log, achievementRepo); err != nil {
    log.Error("Achievement seeding failed", "error", err)
    os.Exit(1)
  }

  // Services
  log.Info("Setting up Services from main...")
  avatarService, err := services.NewAvatarService(log)
  if err != nil {
    log.Error("Could not init AvatarService", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  statsService := services.NewStatsService(thePG, log, aggregateStatsRepo, rdb)
  achievementService := services.NewAchievementService(thePG, log, achievementRepo, userAchievementRepo, aggregateStatsRepo)
  updateLogService := services.NewUpdateLogService(thePG, log, updateLogRepo)
  listService := services.NewListService(thePG, log, mediaEntryRepo, userEntryRepo, aggregateStatsRepo, achievementService, updateLogService, statsService)
  reconcileService := services.NewReconcileService(thePG, log, userEntryRepo, aggregateStatsRepo, statsService)
  catalogService := services.NewCatalogService(thePG, log, mediaEntryRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userRepo, avatarService)
  listHandler := handlers.NewListHandler(listService)
  catalogHandler := handlers.NewCatalogHandler(mediaEntryRepo, catalogService)
  statsHandler := handlers.NewStatsHandler(statsService, reconcileService)
  achievementHandler := handlers.NewAchievementHandler(achievementService, achievementRepo)
  feedHandler := handlers.NewFeedHandler(updateLogService)

  // Middleware
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:        authHandler,
    AuthMiddleware:     authMiddleware,
    UserHandler:        userHandler,
    ListHandler:        listHandler,
    CatalogHandler:     catalogHandler,
    StatsHandler:       statsHandler,
    AchievementHandler: achievementHandler,
    FeedHandler:        feedHandler,
    MediaDir:           mediaDir,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
