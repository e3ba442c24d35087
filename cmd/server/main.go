package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qa-board/internal/auth"
	"qa-board/internal/cache"
	"qa-board/internal/config"
	apphttp "qa-board/internal/http"
	"qa-board/internal/repository/sqlite"
	"qa-board/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatalf("setup token service: %v", err)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	questionRepo := sqlite.NewQuestionRepository(db)
	answerRepo := sqlite.NewAnswerRepository(db)
	statsRepo := sqlite.NewStatsRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := questionRepo.Init(ctx); err != nil {
		logger.Fatalf("init question repository: %v", err)
	}
	if err := answerRepo.Init(ctx); err != nil {
		logger.Fatalf("init answer repository: %v", err)
	}

	store, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup cache: %v", err)
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := apphttp.NewHandler(apphttp.HandlerConfig{
		Users:                 service.NewUserService(userRepo),
		Questions:             service.NewQuestionService(questionRepo),
		Answers:               service.NewAnswerService(answerRepo, questionRepo),
		Stats:                 service.NewStatsService(statsRepo),
		Tokens:                tokens,
		Cache:                 store,
		CacheTTL:              time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		Logger:                logger,
		AdvancedSearchEnabled: cfg.Features.AdvancedSearch,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) (cache.Cache, error) {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	switch cfg.Cache.Backend {
	case "", "memory":
		logger.Info("using in-memory response cache")
		return cache.NewMemory(ttl), nil
	case "redis":
		store, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			KeyPrefix:  cfg.Cache.Redis.KeyPrefix,
			DefaultTTL: ttl,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("using redis response cache at %s", cfg.Cache.Redis.Addr)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
