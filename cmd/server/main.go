package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/logger"
	infraredis "blog_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Server)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	// db
	gdb, err := db.Open(cfg.Database, l)
	if err != nil {
		l.Fatal("failed to open database", zap.Error(err))
	}

	// Redis
	rdb, err := infraredis.NewRedisClient(context.Background(), cfg.Redis, l)
	if err != nil {
		l.Warn("Redis unavailable. Running without cache.", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				l.Error("failed to close Redis client", zap.Error(err))
			}
		}()
	}

	c, err := di.New(cfg, gdb, rdb, l)
	if err != nil {
		l.Fatal("failed to wire application", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.NewRouter(cfg.Server, l, c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("graceful shutdown failed", zap.Error(err))
	}
	l.Info("server stopped")
}
