package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/platform/apperr"
	jwtmw "blog_backend/internal/platform/jwt"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。
	// 生存中のユーザーが同じメールアドレスを持つ場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は生存中のユーザーをメールアドレスで取得します。
	// 見つからない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。includeDeletedがfalseなら論理削除済みは対象外です。
	FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.User, error)

	// UpdateLastLogin はlast_loginカラムのみを更新します。
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error

	// SoftDelete はユーザーを論理削除します。
	SoftDelete(ctx context.Context, id uint) error
}

// TokenIssuer はアクセストークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string `validate:"required,email,max=255"`
	Name     string `validate:"required,max=100"`
	Password string `validate:"required,min=8,max=128"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Email string
	Name  string
	Token string
}

// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var _ jwtmw.IdentityResolver = (*authUsecase)(nil)

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	tokens   TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return u.register(ctx, in, false)
}

// RegisterStaff はスタッフ権限を持つユーザーを登録します（管理用CLIから使用）。
func (u *authUsecase) RegisterStaff(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return u.register(ctx, in, true)
}

func (u *authUsecase) register(ctx context.Context, in RegisterInput, staff bool) (*entity.User, error) {
	if err := u.validateInput(in); err != nil {
		return nil, err
	}
	email := NormalizeEmail(in.Email)

	// 生存中ユーザーとのメールアドレス重複を事前確認
	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Validation("email", duplicateEmailMessage)
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Name:     in.Name,
		Password: string(hashed),
		IsStaff:  staff,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// 事前確認と挿入の間に同じメールアドレスが登録された場合
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, apperr.Validation("email", duplicateEmailMessage)
		}
		return nil, err
	}
	return user, nil
}

// validateInput converts struct validation failures into field messages.
func (u *authUsecase) validateInput(in RegisterInput) error {
	if err := u.validate.Struct(in); err != nil {
		return apperr.FromBinding(err)
	}
	return nil
}

// Login はユーザーを認証し、成功時にトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if user == nil {
		return nil, ErrLoginEmailWrong
	}
	if compareErr != nil {
		return nil, ErrLoginPasswordWrong
	}

	if err := u.users.UpdateLastLogin(ctx, user.ID, u.now()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{Email: user.Email, Name: user.Name, Token: token}, nil
}

// CurrentUser は生存中のユーザーを取得します。
func (u *authUsecase) CurrentUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id, false)
}

// DeleteAccount はユーザーを論理削除します。以後そのユーザーのトークンは認証に使えません。
func (u *authUsecase) DeleteAccount(ctx context.Context, id uint) error {
	return u.users.SoftDelete(ctx, id)
}

// ResolveIdentity は認証ゲートのためにトークンのユーザーIDを生存中ユーザーへ解決します。
func (u *authUsecase) ResolveIdentity(ctx context.Context, id uint) (*jwtmw.Identity, error) {
	user, err := u.users.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return &jwtmw.Identity{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsStaff: user.IsStaff,
	}, nil
}

// NormalizeEmail lower-cases the domain part of an address. The local part is kept as is.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
