package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/pkg/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the admin routes. Guards are applied by the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reset", h.reset)
	r.GET("/archives", h.archives)
}

func (h *Handler) reset(c *gin.Context) {
	result, err := h.service.Reset(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "Failed to reset database")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Database reset successfully",
		"clearedOrders": result.ClearedOrders,
		"archiveId":     result.ArchiveID,
	})
}

func (h *Handler) archives(c *gin.Context) {
	archives, err := h.service.Archives(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "Failed to list archives")
		return
	}

	c.JSON(http.StatusOK, gin.H{"archives": archives})
}
