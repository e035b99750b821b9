package userapi

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrTokenExpired is returned when a presented token is past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers bad signatures, truncated tokens, and tokens we
// cannot decode at all
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrMismatchedHashAndPassword is returned for both unknown identifiers and
// wrong passwords so login does not leak account existence
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrNoEmptyString is the error we return when hashing an empty password
var ErrNoEmptyString = errors.New("password should not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_PASSWORD")

// ErrEmailTaken maps the store's unique-email violation
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("EMAIL_TAKEN")

// NewUserNotFoundByID builds the not-found error for an id lookup. The raw id
// is carried in the message so callers see exactly what was requested.
func NewUserNotFoundByID(id string) *errors.Error {
	return errors.New(fmt.Sprintf("User with id %s not found", id), errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode("USER_NOT_FOUND")
}

// NewUserNotFoundByEmail builds the not-found error for an email lookup
func NewUserNotFoundByEmail(email string) *errors.Error {
	return errors.New(fmt.Sprintf("User with email %s not found", email), errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode("USER_NOT_FOUND")
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
