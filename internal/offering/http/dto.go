package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
)

type OfferingResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewOfferingResponse(o *offering.Offering) OfferingResponse {
	return OfferingResponse{
		ID:              o.ID,
		Name:            o.Name,
		Description:     o.Description,
		PriceCents:      o.PriceCents,
		DurationMinutes: o.DurationMinutes,
		IsActive:        o.IsActive,
		CreatedAt:       o.CreatedAt,
	}
}

type ListOfferingsRequest struct {
	request.ListParams
	Name     string `form:"q"`
	IsActive *bool  `form:"is_active"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=name price_cents duration_minutes created_at"`
}

type CreateOfferingRequest struct {
	Name            string `json:"name" binding:"required,max=120"`
	Description     string `json:"description" binding:"max=2000"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=1440"`
	IsActive        *bool  `json:"is_active"`
}

type UpdateOfferingRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=120"`
	Description     *string `json:"description" binding:"omitempty,max=2000"`
	PriceCents      *int64  `json:"price_cents" binding:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	IsActive        *bool   `json:"is_active"`
}
