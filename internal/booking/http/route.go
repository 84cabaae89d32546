package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuth gin.HandlerFunc) {
	group := g.Group("/reservations")

	// === Public Routes ===
	group.GET("/:id", optionalAuth, h.Get)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.GET("", h.ListMine)
		authed.POST("", h.Create)
		authed.DELETE("/:id", h.Delete)
	}
}
