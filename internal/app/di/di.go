// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authadapters "blog_backend/internal/feature/auth/adapters"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	postsadapters "blog_backend/internal/feature/posts/adapters"
	postshandler "blog_backend/internal/feature/posts/transport/handler"
	postsusecase "blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/cache"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
)

// Container holds the HTTP-facing components built from configuration.
type Container struct {
	Gate   gin.HandlerFunc
	Health *handler.HealthHandler
	Auth   *authhandler.AuthHandler
	Posts  *postshandler.PostHandler
}

// NewTokenCodec creates the JWT codec from the auth configuration.
func NewTokenCodec(cfg config.AuthConfig) (*jwtmw.Codec, error) {
	return jwtmw.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiration)
}

// NewUserRepository creates a UserRepository implementation.
func NewUserRepository(db *gorm.DB) authusecase.UserRepository {
	return authadapters.NewUserGorm(db)
}

// NewPostRepository creates a PostRepository implementation.
// If Redis is available, the GORM repository is wrapped with a Redis cache.
// Otherwise, it is used directly.
func NewPostRepository(rdb *redis.Client, db *gorm.DB, cfg config.RedisConfig) postsusecase.PostRepository {
	repo := postsadapters.NewPostGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingPostRepository(rdb, cfg.PostTTL, repo, "posts")
}

// New wires repositories, usecases and handlers. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, l *zap.Logger) (*Container, error) {
	codec, err := NewTokenCodec(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}

	// Repository
	userRepo := NewUserRepository(db)
	postRepo := NewPostRepository(rdb, db, cfg.Redis)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, codec)
	postsUC := postsusecase.NewPostUsecase(postRepo)

	return &Container{
		Gate:   jwtmw.Authenticate(codec, authUC, cfg.Auth.HeaderPrefix),
		Health: handler.NewHealthHandler(sqlDB),
		Auth:   authhandler.NewAuthHandler(authUC, l),
		Posts:  postshandler.NewPostHandler(postsUC, l, cfg.Pagination.PageSize, cfg.Pagination.MaxPageSize),
	}, nil
}
