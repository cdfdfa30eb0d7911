// Command createstaff creates a staff account. Staff can restore and purge posts.
//
//	go run ./cmd/createstaff -email admin@example.com -name admin -password 'secret123'
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"blog_backend/internal/app/di"
	authusecase "blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/logger"
)

func main() {
	email := flag.String("email", "", "staff email address")
	name := flag.String("name", "", "display name")
	password := flag.String("password", os.Getenv("STAFF_PASSWORD"), "password (defaults to $STAFF_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Server)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	gdb, err := db.Open(cfg.Database, l)
	if err != nil {
		l.Fatal("failed to open database", zap.Error(err))
	}

	codec, err := di.NewTokenCodec(cfg.Auth)
	if err != nil {
		l.Fatal("failed to build token codec", zap.Error(err))
	}
	uc := authusecase.NewAuthUsecase(di.NewUserRepository(gdb), codec)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := uc.RegisterStaff(ctx, authusecase.RegisterInput{
		Email:    *email,
		Name:     *name,
		Password: *password,
	})
	if err != nil {
		l.Fatal("failed to create staff user", zap.Error(err))
	}
	l.Info("staff user created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
}
