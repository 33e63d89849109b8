package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

type Handler struct {
	service offering.Service
}

func NewHandler(service offering.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListOfferingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()
	if c.Query("sort_order") == "" {
		req.SortOrder = "ASC"
	}

	items, total, err := h.service.List(c.Request.Context(), offering.Filter{
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

	resp := make([]OfferingResponse, len(items))
	for i, o := range items {
		resp[i] = NewOfferingResponse(o)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(resp, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid service id", err)
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	o, err := h.service.Create(c.Request.Context(), offering.CreateRequest{
		Name:            body.Name,
		Description:     body.Description,
		PriceCents:      body.PriceCents,
		DurationMinutes: body.DurationMinutes,
		IsActive:        body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewOfferingResponse(o))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid service id", err)
		return
	}

	var body UpdateOfferingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	o, err := h.service.Update(c.Request.Context(), uri.ID, offering.UpdateRequest{
		Name:            body.Name,
		Description:     body.Description,
		PriceCents:      body.PriceCents,
		DurationMinutes: body.DurationMinutes,
		IsActive:        body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOfferingResponse(o))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid service id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
