package roster

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	roster := r.Group("/roster")
	{
		roster.GET("", h.list)
		roster.PUT("", h.replace)
	}

	votes := r.Group("/votes")
	{
		votes.GET("", h.tally)
		votes.POST("", h.recordTally)
	}
}

func (h *Handler) list(c *gin.Context) {
	players, err := h.service.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "Failed to retrieve players")
		return
	}

	c.JSON(http.StatusOK, gin.H{"players": players})
}

type ReplaceRosterRequest struct {
	Players []models.Player `json:"players" binding:"required"`
}

func (h *Handler) replace(c *gin.Context) {
	var req ReplaceRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to update players")
		return
	}

	players, err := h.service.Replace(c.Request.Context(), req.Players)
	if err != nil {
		apperr.Respond(c, err, "Failed to update players")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "players": players})
}

func (h *Handler) tally(c *gin.Context) {
	tally, err := h.service.Tally(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "Failed to fetch votes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": tally})
}

type TallyRequest struct {
	PlayerID int    `json:"playerId" binding:"required"`
	VoteType string `json:"voteType" binding:"required,oneof=up down"`
}

func (h *Handler) recordTally(c *gin.Context) {
	var req TallyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to update votes")
		return
	}

	tally, err := h.service.RecordTally(c.Request.Context(), req.PlayerID, models.VoteType(req.VoteType))
	if err != nil {
		apperr.Respond(c, err, "Failed to update votes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": tally})
}
