// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
	"blog_backend/internal/platform/store"
)

// postGorm はPostRepositoryインターフェースのGORM実装です。
type postGorm struct {
	store *store.Store[entity.Post]
}

var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm は指定されたgorm.DB接続でpostGormの新しいインスタンスを生成します。
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{store: store.New[entity.Post](db)}
}

// List は生存中のポストを所有者付きで新しい順に返します。
func (r *postGorm) List(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error) {
	scopes := append(keywordScopes(keyword), store.Preload("User"), store.Paginate(offset, limit))
	return r.store.List(ctx, false, scopes...)
}

// Count はListと同じ検索条件の件数を返します。
func (r *postGorm) Count(ctx context.Context, keyword string) (int64, error) {
	return r.store.Count(ctx, false, keywordScopes(keyword)...)
}

// FindByID はIDでポストを所有者付きで取得します。
func (r *postGorm) FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
	p, err := r.store.Get(ctx, id, includeDeleted, store.Preload("User"))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *postGorm) Create(ctx context.Context, p *entity.Post) error {
	return mapErr(r.store.Create(ctx, p))
}

func (r *postGorm) Update(ctx context.Context, id uint, fields map[string]any) error {
	return mapErr(r.store.Update(ctx, id, fields))
}

func (r *postGorm) SoftDelete(ctx context.Context, id uint) error {
	return mapErr(r.store.SoftDelete(ctx, id))
}

func (r *postGorm) Restore(ctx context.Context, id uint) error {
	return mapErr(r.store.Restore(ctx, id))
}

func (r *postGorm) HardDelete(ctx context.Context, id uint) error {
	return mapErr(r.store.HardDelete(ctx, id))
}

// keywordScopes matches keyword case-insensitively against title or contents.
// LIKE wildcards in the keyword are matched literally.
// SQLite's LOWER folds ASCII only; PostgreSQL folds all of Unicode.
func keywordScopes(keyword string) []store.Scope {
	if keyword == "" {
		return nil
	}
	pattern := "%" + escapeLike(keyword) + "%"
	return []store.Scope{store.Where(
		`(LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(contents) LIKE LOWER(?) ESCAPE '\')`,
		pattern, pattern,
	)}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return usecase.ErrPostNotFound
	}
	return err
}
