// Package dto defines data transfer objects for the posts feature's HTTP transport layer.
package dto

import (
	"encoding/json"
	"time"

	authdto "blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/platform/apperr"
)

// CreatePostReq is the body of POST /posts.
// Pointers distinguish a missing field (required) from a blank one (rejected by the usecase).
type CreatePostReq struct {
	Title    *string `json:"title" binding:"required"`
	Contents *string `json:"contents" binding:"required"`
}

// UpdatePostReq is the body of PUT and PATCH /posts/:id. Absent fields are left unchanged.
type UpdatePostReq struct {
	Title    OptionalString `json:"title"`
	Contents OptionalString `json:"contents"`
}

// Validate rejects fields that are present but null.
func (r UpdatePostReq) Validate() error {
	verr := apperr.NewValidationError()
	if r.Title.Null {
		verr.Add("title", nullFieldMessage)
	}
	if r.Contents.Null {
		verr.Add("contents", nullFieldMessage)
	}
	return verr.OrNil()
}

const nullFieldMessage = "This field may not be null."

// OptionalString tells an absent JSON field apart from an explicit null.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON is only called when the field is present.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Ptr returns the value, or nil when the field was absent or null.
func (o OptionalString) Ptr() *string {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// PostRes is the representation of a post.
type PostRes struct {
	ID        uint                `json:"id"`
	User      authdto.UserSummary `json:"user"`
	Title     string              `json:"title"`
	Contents  string              `json:"contents"`
	DeletedAt *time.Time          `json:"deleted_at"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewPostRes converts a post entity with its preloaded owner.
func NewPostRes(p *entity.Post) PostRes {
	return PostRes{
		ID:        p.ID,
		User:      authdto.NewUserSummary(&p.User),
		Title:     p.Title,
		Contents:  p.Contents,
		DeletedAt: p.DeletedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewPostResList converts a slice of posts.
func NewPostResList(posts []entity.Post) []PostRes {
	out := make([]PostRes, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostRes(&posts[i]))
	}
	return out
}
