package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "chatwire/cmd/api/router/v1"
	cacheAdapter "chatwire/internal/infrastructure/cache/adapter"
	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/config"
	"chatwire/internal/infrastructure/database"
	queueAdapter "chatwire/internal/infrastructure/queue/adapter"
	queueport "chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/task"
	repoAdapter "chatwire/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "chatwire/internal/pkg/chat/presentation/http"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not loaded", "err", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis is optional: without it, last-seen tracking is disabled.
	var cache cacheport.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		logger.Warn("redis unavailable, last-seen tracking disabled", "err", err)
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// Asynq is optional: without it, offline notifications are disabled.
	var queue queueport.Client
	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		logger.Warn("queue unavailable, offline notifications disabled", "err", err)
	} else {
		queue = client
		defer client.Close()

		srv, err := queueAdapter.NewAsynqServer()
		if err != nil {
			logger.Warn("queue worker not started", "err", err)
		} else {
			task.RegisterNotifyOfflineTask(srv, repoAdapter.NewPgDirectoryRepository(pool))
			go func() {
				if err := srv.Run(context.Background()); err != nil {
					logger.Error("queue worker stopped", "err", err)
				}
			}()
		}
	}

	registry := realtime.NewRegistry()
	defer registry.Close()
	router := realtime.NewRouter(registry, logger)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-UUID"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:     pool,
		Cache:    cache,
		Queue:    queue,
		Registry: registry,
		Router:   router,
		Config:   cfg,
		Logger:   logger,
	})

	logger.Info("server starting", "addr", cfg.ServerAddress)
	if err := r.Run(cfg.ServerAddress); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
