package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *WindowHandler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/barbers/:id/windows")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:windowId", h.Get)

	// === Staff Routes ===
	staff := group.Group("", authMiddleware, staffMiddleware)
	{
		staff.POST("", h.Create)
		staff.PATCH("/:windowId", h.Update)
		staff.DELETE("/:windowId", h.Delete)
	}
}
