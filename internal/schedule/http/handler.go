package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

type WindowHandler struct {
	service schedule.Service
}

func NewHandler(service schedule.Service) *WindowHandler {
	return &WindowHandler{service: service}
}

// List returns every working window of a barber, inactive ones included.
func (h *WindowHandler) List(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]WindowResponse, len(windows))
	for i, w := range windows {
		items[i] = NewWindowResponse(w)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *WindowHandler) Get(c *gin.Context) {
	var uri WindowURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid path parameters", err)
		return
	}

	w, err := h.service.GetWindow(c.Request.Context(), uri.BarberID, uri.WindowID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWindowResponse(w))
}

func (h *WindowHandler) Create(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	var body CreateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	w, err := h.service.CreateWindow(c.Request.Context(), schedule.CreateWindowRequest{
		BarberID:  uri.ID,
		DayOfWeek: *body.DayOfWeek,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		IsActive:  body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewWindowResponse(w))
}

func (h *WindowHandler) Update(c *gin.Context) {
	var uri WindowURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid path parameters", err)
		return
	}

	var body UpdateWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	w, err := h.service.UpdateWindow(c.Request.Context(), uri.BarberID, uri.WindowID, schedule.UpdateWindowRequest{
		DayOfWeek: body.DayOfWeek,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		IsActive:  body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWindowResponse(w))
}

func (h *WindowHandler) Delete(c *gin.Context) {
	var uri WindowURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid path parameters", err)
		return
	}

	if err := h.service.DeleteWindow(c.Request.Context(), uri.BarberID, uri.WindowID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
