package router

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/internal/admin"
	"github.com/batting-order-system/internal/auth"
	"github.com/batting-order-system/internal/battingorder"
	"github.com/batting-order-system/internal/middleware"
	"github.com/batting-order-system/internal/roster"
	"github.com/batting-order-system/pkg/jwt"
	"github.com/batting-order-system/pkg/redis"
)

type Deps struct {
	Store         *redis.Store
	Tokens        *jwt.Manager // nil disables session tokens
	CORSOrigins   []string
	AdminToken    string
	StaticDir     string
	BattingOrders *battingorder.Handler
	Roster        *roster.Handler
	Admin         *admin.Handler
	Auth          *auth.Handler // nil when Tokens is nil
}

func New(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.MetricsMiddleware())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(d.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", health(d.Store))
	router.GET("/metrics", middleware.MetricsHandler())

	api := router.Group("/api")
	api.Use(auth.Viewer(d.Tokens))
	{
		d.BattingOrders.RegisterRoutes(api)
		d.Roster.RegisterRoutes(api)
		if d.Auth != nil {
			d.Auth.RegisterRoutes(api)
		}

		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.RequireAdmin(d.AdminToken))
		d.Admin.RegisterRoutes(adminGroup)
	}

	router.NoRoute(spa(d.StaticDir))

	return router
}

func health(store *redis.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// spa serves the built frontend, falling back to index.html for client-side
// routes. Unknown API paths stay JSON 404s.
func spa(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		// Clean against root so ".." cannot leave staticDir
		filePath := filepath.Join(staticDir, filepath.Clean("/"+reqPath))
		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			c.File(filePath)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
