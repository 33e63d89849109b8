package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authOptional, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Guest-capable Routes ===
	guest := group.Group("", authOptional)
	{
		guest.POST("", h.Create)
		guest.POST("/:id/cancel", h.Cancel)
	}

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.GET("", h.List)
		authed.GET("/:id", h.Get)
		authed.PATCH("/:id", h.Update)
	}

	// === Staff Routes ===
	staff := group.Group("", authMiddleware, staffMiddleware)
	{
		staff.POST("/:id/confirm", h.Confirm)
		staff.POST("/:id/complete", h.Complete)
		staff.DELETE("/:id", h.Delete)
	}
}
