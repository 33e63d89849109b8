package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
// from/to select bookings intersecting [from, to).
type ListBookingsRequest struct {
	request.ListParams
	BarberID string     `form:"barber_id" binding:"omitempty,uuid"`
	Status   string     `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	UserID   string     `form:"user_id" binding:"omitempty,uuid"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy   string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return booking.ErrInvalidRange
	}
	return nil
}

type BarberTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServiceTag struct {
	ID              *string `json:"id"`
	Name            string  `json:"name"`
	PriceCents      int64   `json:"price_cents"`
	DurationMinutes int     `json:"duration_minutes"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	Barber          BarberTag  `json:"barber"`
	Service         ServiceTag `json:"service"`
	CustomerName    string     `json:"customer_name"`
	CustomerContact string     `json:"customer_contact"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	OwnerID         *string    `json:"owner_id"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Barber: BarberTag{ID: b.BarberID, Name: b.BarberName},
		Service: ServiceTag{
			ID:              b.Service.ServiceID,
			Name:            b.Service.Name,
			PriceCents:      b.Service.PriceCents,
			DurationMinutes: b.Service.DurationMinutes,
		},
		CustomerName:    b.CustomerName,
		CustomerContact: b.CustomerContact,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		OwnerID:         b.OwnerID,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// CreateBookingResponse adds the guest cancellation token, shown exactly once.
type CreateBookingResponse struct {
	BookingResponse
	CancelToken string `json:"cancel_token,omitempty"`
}

// ServiceBody describes a service inline when no catalog id is given.
type ServiceBody struct {
	Name            string `json:"name" binding:"required,max=120"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=1440"`
}

type CreateBookingRequest struct {
	BarberID        string       `json:"barber_id" binding:"required,uuid"`
	ServiceID       string       `json:"service_id" binding:"omitempty,uuid"`
	Service         *ServiceBody `json:"service"`
	StartTime       time.Time    `json:"start_time" binding:"required"`
	CustomerName    string       `json:"customer_name" binding:"required,max=120"`
	CustomerContact string       `json:"customer_contact" binding:"required,max=200"`
	Notes           *string      `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateBookingRequest struct {
	StartTime       *time.Time `json:"start_time"`
	CustomerName    *string    `json:"customer_name" binding:"omitempty,max=120"`
	CustomerContact *string    `json:"customer_contact" binding:"omitempty,max=200"`
	Notes           *string    `json:"notes" binding:"omitempty,max=1000"`
}

type CancelBookingRequest struct {
	Token string `json:"token"`
}
