package battingorder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/internal/auth"
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
	submissions := r.Group("/submissions")
	{
		submissions.GET("", h.list)
		submissions.GET("/draft", h.draft)
		submissions.POST("", h.submit)
		submissions.POST("/vote", h.vote)
		submissions.POST("/comment", h.comment)
	}
}

func (h *Handler) list(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		apperr.Respond(c, err, "Failed to retrieve batting orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"battingOrders": orders})
}

func (h *Handler) draft(c *gin.Context) {
	players, err := h.service.Draft(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		apperr.Respond(c, err, "Failed to load batting order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"players": players})
}

type PlayerSlotRequest struct {
	ID       int    `json:"id" binding:"required,gt=0"`
	Name     string `json:"name" binding:"required"`
	Position int    `json:"position" binding:"required,gt=0"`
}

type SubmitRequest struct {
	UserID       string              `json:"userId" binding:"required"`
	UserName     string              `json:"userName"`
	UserPhotoURL *string             `json:"userPhotoURL"`
	Players      []PlayerSlotRequest `json:"players" binding:"required,min=1,dive"`
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to create batting order")
		return
	}

	players := make([]models.PlayerSlot, len(req.Players))
	for i, p := range req.Players {
		players[i] = models.PlayerSlot{ID: p.ID, Name: p.Name, Position: p.Position}
	}

	order, err := h.service.Upsert(c.Request.Context(), SubmitInput{
		UserID:       req.UserID,
		UserName:     req.UserName,
		UserPhotoURL: req.UserPhotoURL,
		Players:      players,
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to create batting order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "battingOrder": StripIdentity(*order)})
}

type VoteRequest struct {
	UserID         string `json:"userId" binding:"required"`
	BattingOrderID string `json:"battingOrderId" binding:"required"`
	VoteType       string `json:"voteType" binding:"required,oneof=up down"`
}

func (h *Handler) vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to process vote")
		return
	}

	order, err := h.service.Vote(c.Request.Context(), req.UserID, req.BattingOrderID, models.VoteType(req.VoteType))
	if err != nil {
		apperr.Respond(c, err, "Failed to process vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "battingOrder": order})
}

type CommentRequest struct {
	BattingOrderID string             `json:"battingOrderId" binding:"required"`
	UserID         string             `json:"userId" binding:"required"`
	Text           string             `json:"text"`
	User           models.CommentUser `json:"user"`
}

func (h *Handler) comment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to add comment")
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), CommentInput{
		BattingOrderID: req.BattingOrderID,
		UserID:         req.UserID,
		Text:           req.Text,
		User:           req.User,
	})
	if err != nil {
		apperr.Respond(c, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}
