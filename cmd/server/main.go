package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/userbase/backend/internal/api"
	"github.com/userbase/backend/internal/auth"
	"github.com/userbase/backend/internal/cache"
	"github.com/userbase/backend/internal/config"
	"github.com/userbase/backend/internal/db"
	"github.com/userbase/backend/internal/health"
	"github.com/userbase/backend/internal/logger"
	"github.com/userbase/backend/internal/metrics"
	"github.com/userbase/backend/internal/password"
	"github.com/userbase/backend/internal/token"
	"github.com/userbase/backend/internal/user"
)

func main() {
	cfg := config.Load()

	logger.SetDefault(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), ""))

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(registry)

	codec, err := token.NewCodec([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to initialize token codec: %v", err)
	}

	userRepo := db.NewUserRepository(database)
	authService := auth.NewService(userRepo, password.NewBcrypt(password.BcryptCost), codec, auth.Config{
		AccessTTL:    cfg.AccessTTL,
		RefreshTTL:   cfg.RefreshTTL,
		RequireOwner: cfg.RequireOwner,
	}).WithObserver(collector)

	userService := user.NewService(userRepo)

	var redisClient *redis.Client
	profileCache, err := cache.New(cfg.RedisAddr)
	if err != nil {
		logger.Warn(context.Background(), "redis unavailable, profile cache disabled", map[string]interface{}{
			"addr":  cfg.RedisAddr,
			"error": err.Error(),
		})
	} else {
		defer profileCache.Close()
		userService.WithCache(profileCache, collector)
		redisClient = profileCache.Client()
	}

	checker := health.NewChecker(database.DB, redisClient, 0)

	router := api.NewRouter(authService, userService, checker, collector, registry, cfg.PublicPrefixes)

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
