package dto

import (
	"time"

	"blog_backend/internal/feature/auth/domain/entity"
)

// RegisterRes is the full representation of a newly created user.
// Token is always null: registering does not log the user in.
type RegisterRes struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	IsStaff   bool       `json:"is_staff"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Token     *string    `json:"token"`
}

// NewRegisterRes converts a user entity.
func NewRegisterRes(u *entity.User) RegisterRes {
	return RegisterRes{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CurrentUserRes is the body of GET /auth/me.
type CurrentUserRes struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCurrentUserRes converts a user entity.
func NewCurrentUserRes(u *entity.User) CurrentUserRes {
	return CurrentUserRes{
		Email:     u.Email,
		Name:      u.Name,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserSummary is the nested owner representation used by other features.
type UserSummary struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUserSummary converts a user entity to its nested representation.
func NewUserSummary(u *entity.User) UserSummary {
	return UserSummary{Email: u.Email, Name: u.Name}
}
