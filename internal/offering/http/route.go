package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/services")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Staff Routes ===
	staff := group.Group("", authMiddleware, staffMiddleware)
	{
		staff.POST("", h.Create)
		staff.PATCH("/:id", h.Update)
		staff.DELETE("/:id", h.Delete)
	}
}
