package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"speakcoach/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and sets the caller identity in
// the context. A configured service-account token is accepted as an
// alternative to an end-user JWT.
func AuthMiddleware(serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			c.Abort()
			return
		}
		token := parts[1]

		if serviceToken != "" && token == serviceToken {
			c.Set("userId", "service")
			c.Next()
			return
		}

		userID, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Token validation error: %v", err)})
			c.Abort()
			return
		}

		c.Set("userId", userID)
		c.Next()
	}
}
