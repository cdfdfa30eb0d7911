// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/store"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// 論理削除の扱いは汎用ストアに委ねます。
type userGorm struct {
	store *store.Store[entity.User]
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{store: store.New[entity.User](db)}
}

// Create はユーザーをデータベースに追加します。
// 生存中ユーザーとメールアドレスが重複する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	return mapErr(r.store.Create(ctx, u))
}

// FindByEmail は生存中のユーザーをメールアドレスで取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := r.store.First(ctx, false, store.Where("email = ?", email))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.User, error) {
	u, err := r.store.Get(ctx, id, includeDeleted)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// UpdateLastLogin はlast_loginのみを更新します。updated_atは変わりません。
func (r *userGorm) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := r.store.DB(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("last_login", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// SoftDelete はユーザーを論理削除します。
func (r *userGorm) SoftDelete(ctx context.Context, id uint) error {
	return mapErr(r.store.SoftDelete(ctx, id))
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return usecase.ErrUserNotFound
	case errors.Is(err, store.ErrDuplicate):
		return usecase.ErrEmailAlreadyExists
	default:
		return err
	}
}
