package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/game"
)

// statusForError maps game errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrBallsMoving), errors.Is(err, game.ErrCueBallCaptured):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidPower), errors.Is(err, game.ErrInvalidAngle), errors.Is(err, game.ErrDegenerateAim):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrTooManyTables):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as JSON with its mapped status.
func abortWithError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
