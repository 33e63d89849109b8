package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/availability"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

type AvailabilityRequest struct {
	ServiceID string `form:"service_id" binding:"required,uuid"`
	// The date format is checked by the service so the error matches other date inputs.
	Date string `form:"date" binding:"required"`
}

type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityResponse struct {
	BarberID  string         `json:"barber_id"`
	ServiceID string         `json:"service_id"`
	Date      string         `json:"date"`
	Slots     []SlotResponse `json:"slots"`
}

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// Get lists the bookable slots of a barber for one service and date.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid barber id", err)
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), availability.Query{
		BarberID:  uri.ID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponse{Start: s.Start, End: s.End}
	}
	c.JSON(http.StatusOK, AvailabilityResponse{
		BarberID:  uri.ID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Slots:     items,
	})
}

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/barbers/:id/availability", h.Get)
}
