// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/transport/http/dto"
	"blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/apperr"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/logger"
	"blog_backend/internal/platform/pagination"
)

// PostUsecase はポスト操作のユースケースを定義します。
type PostUsecase interface {
	List(ctx context.Context, keyword string, req pagination.Request) (*usecase.Page, error)
	Get(ctx context.Context, id uint) (*entity.Post, error)
	Create(ctx context.Context, actor usecase.Actor, in usecase.CreateInput) (*entity.Post, error)
	Update(ctx context.Context, actor usecase.Actor, id uint, patch usecase.Patch) (*entity.Post, error)
	Delete(ctx context.Context, actor usecase.Actor, id uint) error
	Restore(ctx context.Context, id uint) (*entity.Post, error)
	HardDelete(ctx context.Context, id uint) error
}

// PostHandler はポストのHTTPリクエストを処理します。
type PostHandler struct {
	posts       PostUsecase
	l           *zap.Logger
	pageSize    int
	maxPageSize int
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(posts PostUsecase, l *zap.Logger, pageSize, maxPageSize int) *PostHandler {
	return &PostHandler{posts: posts, l: l, pageSize: pageSize, maxPageSize: maxPageSize}
}

// List は GET /posts?keyword=&page=&per_page= を処理します。
func (h *PostHandler) List(c *gin.Context) {
	req, err := pagination.ParseRequest(c.Request.URL.Query(), h.pageSize, h.maxPageSize)
	if err != nil {
		h.fail(c, "invalid page", err, zap.String("page", c.Query(pagination.PageParam)))
		return
	}

	page, err := h.posts.List(c.Request.Context(), c.Query("keyword"), req)
	if err != nil {
		h.fail(c, "list posts failed", err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewEnvelope(
		pagination.AbsoluteURL(c.Request),
		page.Page, page.PerPage, page.Count,
		dto.NewPostResList(page.Items),
	))
}

// Get は GET /posts/:id を処理します。
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get post failed", err, zap.Uint("post_id", id))
		return
	}
	c.JSON(http.StatusOK, dto.NewPostRes(post))
}

// Create は POST /posts を処理します。リクエストしたユーザーが所有者になります。
func (h *PostHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "create post validation failed", apperr.FromBinding(err))
		return
	}

	post, err := h.posts.Create(c.Request.Context(), actor, usecase.CreateInput{
		Title:    *req.Title,
		Contents: *req.Contents,
	})
	if err != nil {
		h.fail(c, "create post failed", err, zap.Uint("user_id", actor.UserID))
		return
	}

	logger.FromContext(c, h.l).Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.UserID))
	c.JSON(http.StatusCreated, dto.NewPostRes(post))
}

// Update は PUT / PATCH /posts/:id を処理します。どちらも部分更新です。
func (h *PostHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	// 空のボディは何も変更しない部分更新として扱う
	var req dto.UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, "update post validation failed", apperr.FromBinding(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(c, "update post validation failed", err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), actor, id, usecase.Patch{
		Title:    req.Title.Ptr(),
		Contents: req.Contents.Ptr(),
	})
	if err != nil {
		h.fail(c, "update post failed", err, zap.Uint("post_id", id), zap.Uint("user_id", actor.UserID))
		return
	}
	c.JSON(http.StatusOK, dto.NewPostRes(post))
}

// Delete は DELETE /posts/:id を処理します（論理削除）。
func (h *PostHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), actor, id); err != nil {
		h.fail(c, "delete post failed", err, zap.Uint("post_id", id), zap.Uint("user_id", actor.UserID))
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore は POST /posts/:id/restore を処理します（スタッフ専用）。
func (h *PostHandler) Restore(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.posts.Restore(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "restore post failed", err, zap.Uint("post_id", id))
		return
	}

	logger.FromContext(c, h.l).Info("post restored", zap.Uint("post_id", id))
	c.JSON(http.StatusOK, dto.NewPostRes(post))
}

// Purge は DELETE /posts/:id/purge を処理します（スタッフ専用、物理削除）。
func (h *PostHandler) Purge(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.posts.HardDelete(c.Request.Context(), id); err != nil {
		h.fail(c, "purge post failed", err, zap.Uint("post_id", id))
		return
	}

	logger.FromContext(c, h.l).Info("post purged", zap.Uint("post_id", id))
	c.Status(http.StatusNoContent)
}

// postID parses the :id path parameter. A malformed id cannot name a post, so it is a 404.
func (h *PostHandler) postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, "invalid post id", usecase.ErrPostNotFound, zap.String("id", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

func (h *PostHandler) actor(c *gin.Context) (usecase.Actor, bool) {
	id, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		h.fail(c, "write without identity", apperr.ErrNotAuthenticated)
		return usecase.Actor{}, false
	}
	return usecase.Actor{UserID: id.UserID, IsStaff: id.IsStaff}, true
}

// fail logs err at a level matching its status and writes the error response.
func (h *PostHandler) fail(c *gin.Context, msg string, err error, fields ...zap.Field) {
	l := logger.FromContext(c, h.l)
	fields = append(fields, zap.Error(err))
	if apperr.Status(err) >= http.StatusInternalServerError {
		l.Error(msg, fields...)
		_ = c.Error(err)
	} else {
		l.Warn(msg, fields...)
	}
	apperr.Write(c, err)
}
