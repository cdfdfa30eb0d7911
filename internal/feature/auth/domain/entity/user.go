// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"blog_backend/internal/shared/model"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the login identifier. It is unique among alive users only,
	// so a soft-deleted account does not block re-registration.
	Email string `gorm:"size:255;not null;uniqueIndex:idx_users_email_alive,where:deleted_at IS NULL"`

	// Name is the display name.
	Name string `gorm:"size:100;not null"`

	// Password is the bcrypt digest. It is never serialized.
	Password string `gorm:"size:128;not null" json:"-"`

	IsStaff  bool `gorm:"not null;default:false"`
	IsActive bool `gorm:"not null;default:false"`

	// LastLogin is set on every successful login.
	LastLogin *time.Time

	model.Timestamps
	model.SoftDelete
}
