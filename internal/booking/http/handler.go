package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-backend/internal/user"
)

// UserReader looks up the caller to tell staff from customers.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Handler struct {
	service booking.Service
	users   UserReader
}

func NewHandler(service booking.Service, users UserReader) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// actor resolves the caller. Anonymous requests yield an empty Actor, and a
// token whose user no longer exists is treated as a customer.
func (h *Handler) actor(c *gin.Context) (booking.Actor, error) {
	userID := auth.GetUserID(c)
	if userID == "" {
		return booking.Actor{}, nil
	}
	u, err := h.users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		return booking.Actor{UserID: userID}, nil
	}
	if err != nil {
		return booking.Actor{}, fmt.Errorf("resolve caller %s: %w", userID, err)
	}
	return booking.Actor{UserID: userID, IsStaff: u.IsSystemAdmin}, nil
}

// List returns the caller's own bookings, or any bookings for staff.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := booking.Filter{
		BarberID:  req.BarberID,
		Status:    req.Status,
		From:      req.From,
		To:        req.To,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if actor.IsStaff {
		filter.OwnerID = req.UserID
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Create books a slot for a signed-in customer or a guest.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := booking.CreateRequest{
		BarberID:        body.BarberID,
		ServiceID:       body.ServiceID,
		StartTime:       body.StartTime,
		CustomerName:    body.CustomerName,
		CustomerContact: body.CustomerContact,
		Notes:           body.Notes,
		OwnerID:         auth.GetUserID(c),
	}
	if body.Service != nil {
		req.Service = &booking.ServiceDescriptor{
			Name:            body.Service.Name,
			PriceCents:      body.Service.PriceCents,
			DurationMinutes: body.Service.DurationMinutes,
		}
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateBookingResponse{
		BookingResponse: NewBookingResponse(res.Booking),
		CancelToken:     res.CancelToken,
	})
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, booking.UpdateRequest{
		StartTime:       body.StartTime,
		CustomerName:    body.CustomerName,
		CustomerContact: body.CustomerContact,
		Notes:           body.Notes,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id string) (*booking.Booking, error)) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	b, err := fn(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Cancel accepts the owner, staff, or a guest presenting the cancellation token.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	// The body is optional for signed-in callers.
	var body CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), uri.ID, booking.CancelRequest{
		RequesterID: actor.UserID,
		IsStaff:     actor.IsStaff,
		Token:       body.Token,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
