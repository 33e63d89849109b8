package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes (including Auth).
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// === Authenticated Routes ===
	g.GET("/me", authMiddleware, h.Me)

	// === Staff Routes ===
	users := g.Group("/users", authMiddleware, staffMiddleware)
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.PATCH("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}
