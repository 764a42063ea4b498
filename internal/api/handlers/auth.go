package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/admin"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
)

// RequirePlayerToken lets the request through only with a bearer player
// token issued for the :token table.
func RequirePlayerToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "player token required"})
			return
		}
		if err := auth.VerifyTableToken(cfg.JWTSecret, raw, c.Param("token")); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// RequireAdmin validates the admin phone and token headers against the
// bcrypt hash stored in admin_accounts.
func RequireAdmin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin unavailable"})
			return
		}

		phone := c.GetHeader(cfg.AdminPhoneHeader)
		token := c.GetHeader(cfg.AdminTokenHeader)
		if phone == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin credentials required"})
			return
		}

		acc, err := admin.ValidateAdminPhoneAndToken(db, phone, token, c.ClientIP())
		if err != nil {
			log.Printf("[ADMIN] Rejected %s %s for %s: %v", c.Request.Method, c.FullPath(), phone, err)
			admin.LogAdminAction(db, phone, c.ClientIP(), c.FullPath(), "auth", map[string]interface{}{"error": err.Error()}, false)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
			return
		}
		if !admin.HasRole(acc, admin.RoleOperator) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Set("admin_phone", acc.Phone)
		c.Next()
	}
}
