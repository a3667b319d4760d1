package middlewares

import (
	"net/http"
	"strings"

	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"

	"github.com/gin-gonic/gin"
)

// Token verification is pure: the claims carry identity and role, so no
// store lookup happens here. Handlers read "userID" and "role" from the
// context.

func abortWithAuthError(c *gin.Context, err error) {
	if appErr, ok := models.AsAppError(err); ok {
		c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": appErr.Message, "reason": appErr.Reason})
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func CheckAuth(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing or malformed"})
		return
	}

	claims, err := services.VerifyToken(tokenString)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	c.Set("userID", claims.UserID)
	c.Set("role", claims.Role)

	c.Next()
}

// OptionalAuth populates identity when a bearer token is supplied but lets
// anonymous callers through. A token that is present but bad is still
// rejected rather than silently downgraded to anonymous.
func OptionalAuth(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.Next()
		return
	}

	claims, err := services.VerifyToken(tokenString)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	c.Set("userID", claims.UserID)
	c.Set("role", claims.Role)

	c.Next()
}
