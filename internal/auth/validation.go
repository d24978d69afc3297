package auth

import (
	"regexp"
	"strings"

	apperrors "github.com/userbase/backend/internal/errors"
)

// Lowercase-only on both sides of the @; uppercase addresses are rejected.
var emailRegex = regexp.MustCompile(`^[a-z0-9+_.-]+@[a-z0-9.-]+$`)

const minPasswordLength = 6

// ValidateSignUp checks a sign-up request. Checks short-circuit in a fixed
// order: field presence, then email format, then email uniqueness, then
// password policy. emailTaken is consulted only after the email passes the
// format check.
func ValidateSignUp(firstName, lastName, email, password string, emailTaken func(string) bool) *apperrors.AppError {
	if strings.TrimSpace(firstName) == "" {
		return apperrors.FieldRequired("First name")
	}
	if strings.TrimSpace(lastName) == "" {
		return apperrors.FieldRequired("Last name")
	}
	if strings.TrimSpace(email) == "" {
		return apperrors.FieldRequired("Email")
	}
	if !emailRegex.MatchString(email) {
		return apperrors.InvalidEmail()
	}
	if emailTaken(email) {
		return apperrors.DuplicateEmail()
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.FieldRequired("Password")
	}
	if len(password) < minPasswordLength {
		return apperrors.InvalidPassword("Password must be at least 6 characters")
	}
	return nil
}

// ValidateSignIn checks presence of the sign-in credentials, in order.
func ValidateSignIn(email, password string) *apperrors.AppError {
	if strings.TrimSpace(email) == "" {
		return apperrors.FieldRequired("Email")
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.FieldRequired("Password")
	}
	return nil
}
