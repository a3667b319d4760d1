package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505). The unique indexes are the authoritative guard
// against duplicate users and duplicate Prayed responses.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// respondError maps a typed failure onto its HTTP status. Transient store
// failures have already been retried by the time they reach here, so they
// surface as a generic "try again".
func respondError(c *gin.Context, err error) {
	if appErr, ok := models.AsAppError(err); ok {
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message, "kind": string(appErr.Kind), "reason": appErr.Reason})
		return
	}
	if initializers.IsTransientError(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary problem talking to the store. Please try again.", "kind": string(models.KindTransientStore)})
		return
	}
	log.Printf("unhandled error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// currentUserID returns the authenticated user id, or false for anonymous
// callers.
func currentUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func currentRole(c *gin.Context) string {
	return c.GetString("role")
}
