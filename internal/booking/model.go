package booking

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("booking not found")
	ErrBarberNotFound   = apperror.NotFound("barber not found")
	ErrServiceNotFound  = apperror.NotFound("service not found")
	ErrTimeConflict     = apperror.Conflict("Time slot is already booked")
	ErrNotPending       = apperror.InvalidState("Only pending bookings can be confirmed")
	ErrNotConfirmed     = apperror.InvalidState("Only confirmed bookings can be completed")
	ErrAlreadyCancelled = apperror.InvalidState("Booking is already cancelled")
	ErrCompleted        = apperror.InvalidState("Completed bookings cannot be changed")
	ErrNotOwner         = apperror.Forbidden("can only cancel your own bookings")
	ErrPermissionDenied = apperror.Forbidden("permission denied")
	ErrInvalidToken     = apperror.Forbidden("invalid cancellation token")
	ErrStartTimePast    = apperror.InvalidArgument("cannot create booking in the past")
	ErrStartRequired    = apperror.InvalidArgument("start_time is required")
	ErrStartNotAligned  = apperror.InvalidArgument("start_time must be on a whole minute")
	ErrCustomerRequired = apperror.InvalidArgument("customer_name and customer_contact are required")
	ErrServiceRequired  = apperror.InvalidArgument("service_id or service is required")
	ErrInvalidDuration  = apperror.InvalidArgument("duration_minutes must be between 1 and 1440")
	ErrInvalidStatus    = apperror.InvalidArgument("invalid booking status")
	ErrInvalidRange     = apperror.InvalidArgument("from must be before to")
	ErrBarberInactive   = apperror.InvalidArgument("barber is not taking appointments")
	ErrServiceInactive  = apperror.InvalidArgument("service is not available")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses allow no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active statuses occupy the barber's calendar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ServiceDescriptor is the service as it was when the booking was made.
type ServiceDescriptor struct {
	ServiceID       *string
	Name            string
	PriceCents      int64
	DurationMinutes int
}

// DescriptorFrom snapshots a catalog entry.
func DescriptorFrom(o *offering.Offering) ServiceDescriptor {
	id := o.ID
	return ServiceDescriptor{
		ServiceID:       &id,
		Name:            o.Name,
		PriceCents:      o.PriceCents,
		DurationMinutes: o.DurationMinutes,
	}
}

func (d ServiceDescriptor) Duration() time.Duration {
	return time.Duration(d.DurationMinutes) * time.Minute
}

type Booking struct {
	ID              string
	BarberID        string
	BarberName      string
	CustomerName    string
	CustomerContact string
	Service         ServiceDescriptor
	StartTime       time.Time
	EndTime         time.Time // StartTime + Service.DurationMinutes
	Status          Status
	OwnerID         *string // nil for guest bookings
	CancelTokenHash *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Interval and HoldsSlot let bookings feed the schedule overlap filter.
func (b *Booking) Interval() (time.Time, time.Time) { return b.StartTime, b.EndTime }
func (b *Booking) HoldsSlot() bool                  { return b.Status.Active() }

// IsGuest reports a booking made without an account.
func (b *Booking) IsGuest() bool { return b.OwnerID == nil }

func (b *Booking) OwnedBy(userID string) bool {
	return userID != "" && b.OwnerID != nil && *b.OwnerID == userID
}

type Filter struct {
	BarberID  string
	OwnerID   string
	Status    string
	From      *time.Time // bookings ending after this time
	To        *time.Time // bookings starting before this time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Actor is the identity behind a request. An empty UserID is an anonymous guest.
type Actor struct {
	UserID  string
	IsStaff bool
}

func (a Actor) CanAccess(b *Booking) bool {
	return a.IsStaff || b.OwnedBy(a.UserID)
}
