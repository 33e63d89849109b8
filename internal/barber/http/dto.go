package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	"github.com/nekogravitycat/barbershop-backend/internal/file"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
)

type BarberResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Bio                string    `json:"bio"`
	IsActive           bool      `json:"is_active"`
	AvatarURL          *string   `json:"avatar_url"`
	AvatarThumbnailURL *string   `json:"avatar_thumbnail_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewBarberResponse(b *barber.Barber) BarberResponse {
	resp := BarberResponse{
		ID:        b.ID,
		Name:      b.Name,
		Bio:       b.Bio,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.AvatarFileID != nil {
		url := file.FileURL(*b.AvatarFileID)
		thumb := file.ThumbnailURL(*b.AvatarFileID)
		resp.AvatarURL = &url
		resp.AvatarThumbnailURL = &thumb
	}
	return resp
}

type ListBarbersRequest struct {
	request.ListParams
	Name     string `form:"q"`
	IsActive *bool  `form:"is_active"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CreateBarberRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Bio      string `json:"bio" binding:"max=2000"`
	IsActive *bool  `json:"is_active"`
}

type UpdateBarberRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	IsActive *bool   `json:"is_active"`
}
