package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the read-only pages. optionalAuth identifies the
// caller when a token is sent so per-user fields can be filled in.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, optionalAuth gin.HandlerFunc) {
	g.GET("/dashboard", optionalAuth, h.Dashboard)
	g.GET("/resources/:id", optionalAuth, h.ResourceDetail)
	g.GET("/resources/:id/feed", h.ResourceFeed)
	g.GET("/tags/:tag", h.TagSearch)
	g.GET("/search", h.Search)
}
