// Package usecase implements the business logic for the posts feature.
package usecase

import (
	"fmt"

	"blog_backend/internal/platform/apperr"
)

var (
	// ErrPostNotFound is returned when no post matches the id in the requested view.
	ErrPostNotFound = fmt.Errorf("post %w", apperr.ErrNotFound)

	// ErrNotOwner is returned when a non-staff user modifies someone else's post.
	ErrNotOwner = fmt.Errorf("post belongs to another user: %w", apperr.ErrPermissionDenied)
)
