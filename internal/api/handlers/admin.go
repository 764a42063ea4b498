package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/admin"
	"github.com/playmatatu/billiards/internal/game"
)

// AdminListTables lists the tables running on this instance
func AdminListTables(tm *game.TableManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables := tm.ListTables()
		admin.LogAdminAction(db, c.GetString("admin_phone"), c.ClientIP(), c.FullPath(), "list_tables",
			map[string]interface{}{"count": len(tables)}, true)
		c.JSON(http.StatusOK, gin.H{"tables": tables, "count": len(tables)})
	}
}

// AdminCloseTable closes a table, wherever it runs
func AdminCloseTable(tm *game.TableManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminPhone := c.GetString("admin_phone")
		token := c.Param("token")
		reason := c.DefaultQuery("reason", "admin")

		err := tm.RequestClose(c.Request.Context(), token, reason)
		details := map[string]interface{}{"table": token, "reason": reason}
		admin.LogAdminAction(db, adminPhone, c.ClientIP(), c.FullPath(), "close_table", details, err == nil)
		if err != nil {
			log.Printf("[ADMIN] %s failed to close table %s: %v", adminPhone, token, err)
			abortWithError(c, err)
			return
		}

		log.Printf("[ADMIN] %s closed table %s (%s)", adminPhone, token, reason)
		c.JSON(http.StatusOK, gin.H{"closed": token})
	}
}

// AdminAuditLog returns recent admin actions
func AdminAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to load audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
