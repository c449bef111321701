package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog_api/internal/api"
	"blog_api/internal/app/service"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/repository"
	"blog_api/internal/domain/repository/memory"
	"blog_api/internal/platform/cache"
	"blog_api/internal/platform/config"
	"blog_api/internal/platform/database"
	"blog_api/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("Configuration loaded.", "storage", cfg.Storage)
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set; signing tokens with the built-in development key.")
	}

	ctx := context.Background()

	// 2. Initialize Repositories
	var (
		userRepo    repository.UserRepository
		postRepo    repository.PostRepository
		commentRepo repository.CommentRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := database.Connect(ctx, cfg.DBConnStr())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer closeDB(logger, db)
		logger.Info("Database connected.")

		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			logger.Info("Schema applied.")
		}
		userRepo = repository.NewPgUserRepository(db)
		postRepo = repository.NewPgPostRepository(db)
		commentRepo = repository.NewPgCommentRepository(db)
	default:
		store := memory.New()
		userRepo, postRepo, commentRepo = store.Users(), store.Posts(), store.Comments()
		logger.Warn("Using in-memory storage; data is lost on restart.")
	}

	// 3. Initialize Redis (optional)
	var postCache service.PostListCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rdb.Close()
		postCache = cache.NewPostListCache(rdb, cfg.PostCacheTTL())
		logger.Info("Redis connected.", "addr", cfg.RedisAddr)
	}

	// 4. Initialize Services
	tokens := security.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExp())
	hasher := security.NewHasher(cfg.BcryptCost)
	userService := service.NewUserService(userRepo, tokens, hasher, postCache, logger)
	postService := service.NewPostService(postRepo, commentRepo, postCache, logger)
	commentService := service.NewCommentService(commentRepo)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed admin account: %w", err)
		}
	}

	// 5. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Users:    userService,
		Posts:    postService,
		Comments: commentService,
	}, tokens, userRepo, logger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("listen on %s: %w", cfg.APIPort, err)
	}

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully.")
	return nil
}

func closeDB(logger *slog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error("Error closing database", "error", err)
		return
	}
	logger.Info("Database connection closed.")
}
