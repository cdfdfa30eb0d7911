// Package router はHTTPルーティングを構築します。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog_backend/internal/app/di"
	"blog_backend/internal/platform/apperr"
	"blog_backend/internal/platform/config"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/logger"
)

func NewRouter(cfg config.ServerConfig, l *zap.Logger, c *di.Container) *gin.Engine {
	apperr.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(l))

	if len(cfg.TrustedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.TrustedOrigins,
			AllowMethods:     []string{"GET", "HEAD", "OPTIONS", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
			ExposeHeaders:    []string{logger.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.NoRoute(func(ctx *gin.Context) {
		apperr.Write(ctx, apperr.ErrNotFound)
	})
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(ctx *gin.Context) {
		ctx.AbortWithStatusJSON(http.StatusMethodNotAllowed, apperr.ErrorResponse{Detail: "Method not allowed."})
	})

	// 認証不要
	// 導通確認用
	r.GET("/healthz", c.Health.Health)
	r.HEAD("/healthz", c.Health.Health)
	r.OPTIONS("/healthz", c.Health.Health)

	// トークンがあれば検証し、利用者を特定する（なければ匿名）
	api := r.Group("/", c.Gate)

	auth := api.Group("/auth")
	{
		// 新規ユーザー登録
		auth.POST("/register", c.Auth.Register)
		// ログイン（JWT 発行）
		auth.POST("/login", c.Auth.Login)

		me := auth.Group("/me", jwtmw.RequireIdentity())
		me.GET("", c.Auth.Me)
		me.DELETE("", c.Auth.DeleteMe)
	}

	// 読み取りは匿名可、書き込みは認証必須
	posts := api.Group("/posts", jwtmw.ReadOnlyOrAuthenticated())
	{
		posts.GET("", c.Posts.List)
		posts.POST("", c.Posts.Create)
		posts.GET("/:id", c.Posts.Get)
		posts.PUT("/:id", c.Posts.Update)
		posts.PATCH("/:id", c.Posts.Update)
		posts.DELETE("/:id", c.Posts.Delete)
	}

	// スタッフ専用
	staff := api.Group("/posts/:id", jwtmw.RequireStaff())
	{
		staff.POST("/restore", c.Posts.Restore)
		staff.DELETE("/purge", c.Posts.Purge)
	}

	return r
}
