package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, tm *game.TableManager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(tm))

		tables := v1.Group("/tables")
		{
			tables.POST("", handlers.CreateTable(tm, cfg))
			tables.GET("/:token", handlers.GetTable(tm))
			tables.GET("/:token/shots", handlers.ListShots(tm))
			tables.POST("/:token/aim", handlers.AimGuide(tm))
			tables.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleTableWebSocket(hub, cfg))

			player := tables.Group("/:token", handlers.RequirePlayerToken(cfg))
			{
				player.POST("/shot", handlers.TakeShot(tm))
				player.POST("/reset", handlers.ResetTable(tm))
			}
		}

		adminGroup := v1.Group("/admin", handlers.RequireAdmin(db, cfg))
		{
			adminGroup.GET("/tables", handlers.AdminListTables(tm, db))
			adminGroup.DELETE("/tables/:token", handlers.AdminCloseTable(tm, db))
			adminGroup.GET("/audit", handlers.AdminAuditLog(db))
		}
	}
}
