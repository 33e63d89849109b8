package barber

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.NotFound("barber not found")
	ErrNameRequired = apperror.InvalidArgument("name is required")
	ErrInactive     = apperror.InvalidArgument("barber is not taking appointments")
)

// Barber is a staff member who performs services and owns a weekly schedule.
type Barber struct {
	ID           string
	Name         string
	Bio          string
	IsActive     bool
	AvatarFileID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter defines parameters for listing barbers.
type Filter struct {
	Name      string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
