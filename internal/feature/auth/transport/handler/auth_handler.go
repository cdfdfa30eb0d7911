// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/apperr"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/logger"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	CurrentUser(ctx context.Context, id uint) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uint) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
	l    *zap.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, l *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, l: l}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー・メール重複時は400を返却
// - 成功時は201とユーザー表現（token: null）を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "register validation failed", apperr.FromBinding(err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, "register failed", err, zap.String("email", req.Email))
		return
	}

	logger.FromContext(c, h.l).Info("user registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, dto.NewRegisterRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 失敗理由はnon_field_errorsのLOGIN_EMAIL_WRONG / LOGIN_PASSWORD_WRONGで返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "login validation failed", apperr.FromBinding(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login failed", err, zap.String("email", req.Email))
		return
	}

	logger.FromContext(c, h.l).Info("user login successful", zap.String("email", res.Email))
	c.JSON(http.StatusOK, dto.LoginRes{Email: res.Email, Name: res.Name, Token: res.Token})
}

// Me は認証済みユーザー自身の情報を返します。
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		h.fail(c, "me without identity", apperr.ErrNotAuthenticated)
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.fail(c, "current user lookup failed", err, zap.Uint("user_id", id.UserID))
		return
	}
	c.JSON(http.StatusOK, dto.NewCurrentUserRes(user))
}

// DeleteMe は認証済みユーザー自身を論理削除します。
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	id, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		h.fail(c, "delete account without identity", apperr.ErrNotAuthenticated)
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), id.UserID); err != nil {
		h.fail(c, "delete account failed", err, zap.Uint("user_id", id.UserID))
		return
	}

	logger.FromContext(c, h.l).Info("user account deleted", zap.Uint("user_id", id.UserID))
	c.Status(http.StatusNoContent)
}

// fail logs err at a level matching its status and writes the error response.
func (h *AuthHandler) fail(c *gin.Context, msg string, err error, fields ...zap.Field) {
	l := logger.FromContext(c, h.l)
	fields = append(fields, zap.Error(err), zap.String("remote_addr", c.ClientIP()))
	if apperr.Status(err) >= http.StatusInternalServerError {
		l.Error(msg, fields...)
		_ = c.Error(err)
	} else {
		l.Warn(msg, fields...)
	}
	apperr.Write(c, err)
}
