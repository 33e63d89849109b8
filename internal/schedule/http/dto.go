package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

type WindowResponse struct {
	ID        int64     `json:"id"`
	BarberID  string    `json:"barber_id"`
	DayOfWeek int       `json:"day_of_week"`
	DayName   string    `json:"day_name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWindowResponse(w *schedule.WorkingWindow) WindowResponse {
	return WindowResponse{
		ID:        w.ID,
		BarberID:  w.BarberID,
		DayOfWeek: int(w.DayOfWeek),
		DayName:   w.DayOfWeek.String(),
		StartTime: w.StartTime.String(),
		EndTime:   w.EndTime.String(),
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
	}
}

// WindowURI binds both path parameters of a single window route.
type WindowURI struct {
	BarberID string `uri:"id" binding:"required,uuid"`
	WindowID int64  `uri:"windowId" binding:"required,min=1"`
}

type CreateWindowRequest struct {
	// day_of_week is 0 (Monday) to 6 (Sunday).
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

type UpdateWindowRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  *bool   `json:"is_active"`
}
