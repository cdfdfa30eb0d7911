// Package entity defines the domain entities for the posts feature.
package entity

import (
	authentity "blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/shared/model"
)

// Post is a blog entry owned by a user.
type Post struct {
	ID uint `gorm:"primaryKey"`

	// UserID is the owner. Hard-deleting the user removes the post.
	UserID uint            `gorm:"not null;index"`
	User   authentity.User `gorm:"constraint:OnDelete:CASCADE"`

	Title    string `gorm:"size:200;not null"`
	Contents string `gorm:"type:text;not null"`

	model.Timestamps
	model.SoftDelete
}

// TableName keeps the singular table name.
func (Post) TableName() string {
	return "post"
}

// OwnedBy reports whether userID owns the post.
func (p *Post) OwnedBy(userID uint) bool {
	return p.UserID == userID
}
