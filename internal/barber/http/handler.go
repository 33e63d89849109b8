package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	fileHttp "github.com/nekogravitycat/barbershop-backend/internal/file/http"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

const avatarMaxBytes = 5 << 20

var avatarTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type BarberHandler struct {
	service     barber.Service
	fileHandler *fileHttp.Handler
}

func NewHandler(service barber.Service, fileHandler *fileHttp.Handler) *BarberHandler {
	return &BarberHandler{
		service:     service,
		fileHandler: fileHandler,
	}
}

// List retrieves a paginated list of barbers.
func (h *BarberHandler) List(c *gin.Context) {
	var req ListBarbersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()
	if c.Query("sort_order") == "" {
		req.SortOrder = "ASC"
	}

	barbers, total, err := h.service.List(c.Request.Context(), barber.Filter{
		Name:      req.Name,
		IsActive:  req.IsActive,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BarberResponse, len(barbers))
	for i, b := range barbers {
		items[i] = NewBarberResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *BarberHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBarberResponse(b))
}

func (h *BarberHandler) Create(c *gin.Context) {
	var body CreateBarberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), barber.CreateBarberRequest{
		Name:     body.Name,
		Bio:      body.Bio,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBarberResponse(b))
}

func (h *BarberHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	var body UpdateBarberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, barber.UpdateBarberRequest{
		Name:     body.Name,
		Bio:      body.Bio,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBarberResponse(b))
}

func (h *BarberHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadAvatar replaces the barber's avatar with a multipart "avatar" upload.
func (h *BarberHandler) UploadAvatar(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	// Fail before storing anything if the barber is gone.
	if _, err := h.service.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "avatar",
		MaxSizeBytes:  avatarMaxBytes,
		AllowedTypes:  avatarTypes,
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			previous, err := h.service.SetAvatar(ctx, uri.ID, fileID)
			if err != nil {
				return err
			}
			if previous != nil && *previous != fileID {
				h.fileHandler.DeleteQuietly(ctx, *previous)
			}
			return nil
		},
	})
}
