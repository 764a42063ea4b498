package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/ws"
)

// CreateTable racks a new table and returns its token, a player token that
// allows shooting, the geometry and the initial state.
func CreateTable(tm *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		at, err := tm.CreateTable()
		if err != nil {
			log.Printf("[TABLE] Create failed: %v", err)
			abortWithError(c, err)
			return
		}

		ttl := time.Duration(cfg.TableTokenTTLHours) * time.Hour
		playerToken, err := auth.IssueTableToken(cfg.JWTSecret, at.Token, ttl)
		if err != nil {
			log.Printf("[TABLE] Failed to issue player token for %s: %v", at.Token, err)
			tm.RemoveTable(at.Token, "token_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":        at.Token,
			"player_token": playerToken,
			"geometry":     at.Runner.Geometry(),
			"state":        at.Runner.Snapshot(),
		})
	}
}

// GetTable returns the geometry and current state of a table. Tables run by
// another instance are answered from the Redis snapshot cache.
func GetTable(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if at, err := tm.GetTable(token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"token":    token,
				"geometry": at.Runner.Geometry(),
				"state":    at.Runner.Snapshot(),
			})
			return
		}

		snap, err := tm.CachedSnapshot(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "state": snap, "cached": true})
	}
}

// TakeShot strikes the cue ball. The request carries either an angle in
// radians or an aim point, plus power.
func TakeShot(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ws.TakeShotData
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shot request"})
			return
		}
		shot, err := req.ShotParams()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec, err := tm.Shoot(c.Param("token"), shot)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"shot": rec})
	}
}

// ResetTable re-racks a table at rest.
func ResetTable(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := tm.Reset(c.Param("token"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": snap})
	}
}

// ListShots returns the recorded shots of a table.
func ListShots(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		shots, err := tm.ListShots(c.Param("token"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shots": shots})
	}
}

// AimGuide answers where the aiming line toward (x, y) ends.
func AimGuide(tm *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y required"})
			return
		}
		at, err := tm.GetTable(c.Param("token"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		tm.Touch(at.Token)
		c.JSON(http.StatusOK, gin.H{"guide": at.Runner.AimGuide(game.NewVec2(req.X, req.Y))})
	}
}
