package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/platform/apperr"
	"blog_backend/internal/platform/pagination"
)

const (
	maxTitleLength = 200
)

// PostRepository はポストエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PostRepository interface {
	// List は生存中のポストを新しい順に返します。keywordが空でなければタイトルか本文で部分一致検索します。
	List(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error)

	// Count はListと同じ条件の件数を返します。
	Count(ctx context.Context, keyword string) (int64, error)

	// FindByID はIDでポストを取得します。所有者を含みます。
	FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error)

	Create(ctx context.Context, post *entity.Post) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID  uint
	IsStaff bool
}

// CreateInput holds the fields of a new post.
type CreateInput struct {
	Title    string
	Contents string
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Title    *string
	Contents *string
}

// Page is one page of a post listing.
type Page struct {
	Items   []entity.Post
	Count   int64
	Page    int
	PerPage int
}

// postUsecase はポストのビジネスロジックを実装します。
type postUsecase struct {
	posts PostRepository
}

// NewPostUsecase はpostUsecaseの新しいインスタンスを生成します。
func NewPostUsecase(posts PostRepository) *postUsecase {
	return &postUsecase{posts: posts}
}

// List は検索キーワードとページ指定に従ってポストを返します。
func (u *postUsecase) List(ctx context.Context, keyword string, req pagination.Request) (*Page, error) {
	count, err := u.posts.Count(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	page, err := req.Resolve(count)
	if err != nil {
		return nil, err
	}

	items, err := u.posts.List(ctx, keyword, pagination.Offset(page, req.PerPage), req.PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &Page{Items: items, Count: count, Page: page, PerPage: req.PerPage}, nil
}

// Get は生存中のポストを返します。
func (u *postUsecase) Get(ctx context.Context, id uint) (*entity.Post, error) {
	return u.posts.FindByID(ctx, id, false)
}

// Create はactorを所有者としてポストを作成します。
func (u *postUsecase) Create(ctx context.Context, actor Actor, in CreateInput) (*entity.Post, error) {
	title, contents := strings.TrimSpace(in.Title), strings.TrimSpace(in.Contents)

	verr := apperr.NewValidationError()
	validateTitle(verr, title)
	validateContents(verr, contents)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	post := &entity.Post{UserID: actor.UserID, Title: title, Contents: contents}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	// 所有者を含めて返すため再取得する
	return u.posts.FindByID(ctx, post.ID, false)
}

// Update は指定されたフィールドのみを上書きします。所有者かスタッフのみ実行できます。
func (u *postUsecase) Update(ctx context.Context, actor Actor, id uint, patch Patch) (*entity.Post, error) {
	post, err := u.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	verr := apperr.NewValidationError()
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		validateTitle(verr, title)
		fields["title"] = title
	}
	if patch.Contents != nil {
		contents := strings.TrimSpace(*patch.Contents)
		validateContents(verr, contents)
		fields["contents"] = contents
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return post, nil
	}

	if err := u.posts.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return u.posts.FindByID(ctx, id, false)
}

// Delete はポストを論理削除します。所有者かスタッフのみ実行できます。
func (u *postUsecase) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := u.authorize(ctx, actor, id); err != nil {
		return err
	}
	return u.posts.SoftDelete(ctx, id)
}

// Restore は論理削除されたポストを復元します。
func (u *postUsecase) Restore(ctx context.Context, id uint) (*entity.Post, error) {
	if err := u.posts.Restore(ctx, id); err != nil {
		return nil, err
	}
	return u.posts.FindByID(ctx, id, false)
}

// HardDelete はポストを物理削除します。元に戻せません。
func (u *postUsecase) HardDelete(ctx context.Context, id uint) error {
	return u.posts.HardDelete(ctx, id)
}

// authorize loads the alive post and checks that actor may modify it.
func (u *postUsecase) authorize(ctx context.Context, actor Actor, id uint) (*entity.Post, error) {
	post, err := u.posts.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && !post.OwnedBy(actor.UserID) {
		return nil, ErrNotOwner
	}
	return post, nil
}

func validateTitle(verr *apperr.ValidationError, title string) {
	switch {
	case title == "":
		verr.Add("title", "This field may not be blank.")
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
	}
}

func validateContents(verr *apperr.ValidationError, contents string) {
	if contents == "" {
		verr.Add("contents", "This field may not be blank.")
	}
}
