package offering

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

// MaxDurationMinutes bounds a single service to one day.
const MaxDurationMinutes = 24 * 60

var (
	ErrNotFound        = apperror.NotFound("service not found")
	ErrNameRequired    = apperror.InvalidArgument("name is required")
	ErrInvalidDuration = apperror.InvalidArgument("duration_minutes must be between 1 and 1440")
	ErrInvalidPrice    = apperror.InvalidArgument("price_cents must not be negative")
)

// Offering is an entry in the shop's service catalog (haircut, beard trim, ...).
type Offering struct {
	ID              string
	Name            string
	Description     string
	PriceCents      int64
	DurationMinutes int
	IsActive        bool
	CreatedAt       time.Time
}

// Duration returns the service length as a time.Duration.
func (o *Offering) Duration() time.Duration {
	return time.Duration(o.DurationMinutes) * time.Minute
}

// Filter defines parameters for listing services.
type Filter struct {
	Name      string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
