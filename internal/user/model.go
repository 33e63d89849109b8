package user

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrEmailRequired      = apperror.InvalidArgument("email is required")
	ErrPasswordTooShort   = apperror.InvalidArgument("password must be at least 8 characters")
)

// MinPasswordLength is enforced on registration.
const MinPasswordLength = 8

// User is a customer account. IsSystemAdmin marks shop staff.
type User struct {
	ID            string // UUID
	Email         string
	PasswordHash  string
	DisplayName   *string
	CreatedAt     time.Time
	LastLoginAt   *time.Time
	IsActive      bool
	IsSystemAdmin bool
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email       string
	DisplayName string
	IsActive    *bool // nil means either

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// UpdateUserRequest carries staff-side partial updates.
type UpdateUserRequest struct {
	DisplayName   *string
	IsActive      *bool
	IsSystemAdmin *bool
}
