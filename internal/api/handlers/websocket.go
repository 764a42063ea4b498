package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/ws"
)

// HandleTableWebSocket streams a table. A valid player token in the pt query
// parameter allows shooting; without one the socket is view-only.
func HandleTableWebSocket(hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		canShoot := false
		if pt := c.Query("pt"); pt != "" {
			canShoot = auth.VerifyTableToken(cfg.JWTSecret, pt, token) == nil
		}
		hub.ServeTable(c, token, canShoot)
	}
}
