package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plumeblog/plume/internal/app"
	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/comments"
	"github.com/plumeblog/plume/internal/platform/cache"
	"github.com/plumeblog/plume/internal/platform/db"
	"github.com/plumeblog/plume/internal/posts"
	"github.com/plumeblog/plume/internal/ratelimit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	generalPolicy := ratelimit.GeneralPolicy(cfg.RateLimitRequests, cfg.RateLimitWindow)
	authPolicy := ratelimit.AuthPolicy(cfg.AuthRateLimitRequests, cfg.AuthRateLimitWindow)

	var generalLimiter, authLimiter ratelimit.Limiter
	if redisClient != nil {
		generalLimiter = ratelimit.NewRedisStore(redisClient, generalPolicy)
		authLimiter = ratelimit.NewRedisStore(redisClient, authPolicy)
	} else {
		generalStore := ratelimit.NewMemoryStore(generalPolicy)
		generalStore.StartJanitor(ctx, time.Minute)
		authStore := ratelimit.NewMemoryStore(authPolicy)
		authStore.StartJanitor(ctx, time.Minute)
		generalLimiter = generalStore
		authLimiter = authStore
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTTTL, cfg.JWTRefreshTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authMW := auth.Middleware{Tokens: tokens, Service: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMW, ratelimit.Middleware(authLimiter, authPolicy, logger))

	postsRepo := posts.NewRepository(pool)
	postsService := posts.NewService(postsRepo)
	postsHandler := posts.NewHandler(logger, postsService, authMW)

	commentsRepo := comments.NewRepository(pool)
	commentsService := comments.NewService(commentsRepo)
	commentsHandler := comments.NewHandler(logger, commentsService, authMW)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		PostsHandler:    postsHandler,
		CommentsHandler: commentsHandler,
		GeneralLimit:    ratelimit.Middleware(generalLimiter, generalPolicy, logger),
		StartedAt:       time.Now(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
