// Command server runs the World Director as an HTTP + cron service:
// load configuration, wire storage/cache/judge dependencies, and serve
// the tick/replay/explain API until signaled to stop.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/redis/go-redis/v9"

	"github.com/pj4239460/story-graph-assistant/internal/api"
	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/config"
	"github.com/pj4239460/story-graph-assistant/internal/director"
	"github.com/pj4239460/story-graph-assistant/internal/logger"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/storage"
	"github.com/pj4239460/story-graph-assistant/internal/trigger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)
	appLogger.Info("starting world director server", "port", cfg.Server.Port)

	db, err := storage.NewDB(cfg.Database)
	if err != nil {
		appLogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := storage.CreateSchema(ctx, db); err != nil {
		cancel()
		appLogger.Error("failed to create schema", "error", err)
		os.Exit(1)
	}
	cancel()

	projects := storage.NewProjectRepository(db)
	ticks := storage.NewTickRepository(db)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			appLogger.Warn("redis unavailable, judge caching falls back to in-process only", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLogger.Info("redis connected for judge cache")
		}
	}

	var openaiClient *openai.Client
	if cfg.Judge.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.Judge.OpenAIAPIKey)
	}

	judgeFactory := func(mode model.EvalMode) condition.NLJudge {
		if openaiClient == nil {
			appLogger.Warn("director mode requires a judge but no OpenAI API key is configured", "mode", mode)
			return nil
		}
		base := condition.NewOpenAIJudge(openaiClient, cfg.Judge.Model)

		if redisClient != nil {
			redisCache := condition.NewRedisJudgeCache(redisClient, "director:judge:", 24*time.Hour)
			return condition.NewTieredJudge(base, cfg.Judge.LocalCacheCap, redisCache)
		}
		return condition.NewCachedJudge(base, cfg.Judge.LocalCacheCap)
	}

	dir := director.New(judgeFactory)
	dir.Log = appLogger

	handlers := api.NewHandlers(dir, projects, ticks, appLogger)

	var tokens *api.TokenService
	if cfg.Server.JWTSecret != "" {
		tokens = api.NewTokenService(cfg.Server.JWTSecret, 24*time.Hour)
	} else {
		appLogger.Warn("DIRECTOR_JWT_SECRET not set, API runs unauthenticated")
	}

	router := api.NewRouter(handlers, tokens, appLogger, cfg.Logging.Level == "debug")

	var scheduler *trigger.Scheduler
	if cfg.Autoplay.Enabled {
		scheduler = trigger.NewScheduler(dir, projects, ticks, appLogger)
		if err := scheduler.Start(cfg.Autoplay.Spec); err != nil {
			appLogger.Error("failed to start autoplay scheduler", "error", err)
			os.Exit(1)
		}
		appLogger.Info("autoplay scheduler started", "schedule", cfg.Autoplay.Spec)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			appLogger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		appLogger.Info("shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if scheduler != nil {
			scheduler.Stop()
			appLogger.Info("autoplay scheduler stopped")
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			_ = srv.Close()
		}

		appLogger.Info("server stopped")
	}
}
