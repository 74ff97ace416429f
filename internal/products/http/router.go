package http

import "github.com/gin-gonic/gin"

// Register attaches product routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PUT("", h.upsert)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.patch)
	rg.DELETE("/:id", h.delete)
}
