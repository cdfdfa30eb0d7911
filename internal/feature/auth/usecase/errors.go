// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"

	"blog_backend/internal/platform/apperr"
)

var (
	// ErrUserNotFound is returned when no alive user matches an email or ID.
	ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)

	// ErrEmailAlreadyExists is returned by repositories when an alive user already owns the email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrLoginEmailWrong is returned when no alive user owns the login email.
	ErrLoginEmailWrong error = apperr.Validation(apperr.NonFieldErrors, "LOGIN_EMAIL_WRONG")

	// ErrLoginPasswordWrong is returned when the password does not match.
	ErrLoginPasswordWrong error = apperr.Validation(apperr.NonFieldErrors, "LOGIN_PASSWORD_WRONG")
)

// duplicateEmailMessage is the field message for a taken email.
const duplicateEmailMessage = "user with this email already exists."
