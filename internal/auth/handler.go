package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/pkg/apperr"
	"github.com/batting-order-system/pkg/jwt"
)

// Handler opens and closes sessions for users already signed in with the
// identity provider. It is not registered when no signing secret is set.
type Handler struct {
	tokens *jwt.Manager
	secure bool
}

func NewHandler(tokens *jwt.Manager, secureCookies bool) *Handler {
	return &Handler{
		tokens: tokens,
		secure: secureCookies,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/session", h.openSession)
		auth.DELETE("/session", h.closeSession)
		auth.GET("/me", h.me)
	}
}

type SessionRequest struct {
	UserID      string `json:"userId" binding:"required"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func (h *Handler) openSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err), "Failed to open session")
		return
	}

	token, err := h.tokens.GenerateToken(req.UserID, req.DisplayName, req.PhotoURL)
	if err != nil {
		apperr.Respond(c, err, "Failed to generate token")
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": req.UserID})
}

func (h *Handler) closeSession(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	userID := ViewerID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID})
}
