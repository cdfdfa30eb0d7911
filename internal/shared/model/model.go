// Package model provides value structs that entities embed for common columns.
package model

import "time"

// Timestamps holds the creation and last-update times of a record.
// GORM fills both columns automatically on insert and update.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// SoftDelete marks a record as deleted without removing the row.
// A nil DeletedAt means the record is alive.
type SoftDelete struct {
	DeletedAt *time.Time `gorm:"index"`
}

// IsDeleted reports whether the record has been soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
