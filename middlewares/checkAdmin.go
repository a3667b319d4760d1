package middlewares

import (
	"net/http"

	"github.com/SpiritConnect/models"
	"github.com/gin-gonic/gin"
)

func CheckAdmin(c *gin.Context) {
	role := c.GetString("role")

	if role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required", "reason": models.ReasonForbidden})
		return
	}
}
